package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

const (
	MEMORY_SIZE    = 0x1000 // Bytes of addressable memory.
	MEMORY_MASK    = MEMORY_SIZE - 1
	PROGRAM_START  = 0x200 // Load and reset address of programs.
	PROGRAM_MAX    = MEMORY_SIZE - PROGRAM_START
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32
	REGISTER_FLAG  = 0xF // Carry, borrow and collision output register.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("0x%x", MEMORY_SIZE),
	"PROGRAM_START":  fmt.Sprintf("0x%x", PROGRAM_START),
	"DISPLAY_WIDTH":  fmt.Sprintf("%d", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%d", DISPLAY_HEIGHT),
	"FONT_BASE":      fmt.Sprintf("0x%x", FONT_BASE),
	"FONT_HEIGHT":    fmt.Sprintf("%d", FONT_HEIGHT),
}

// Cpu is the complete architectural state of the virtual machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Host  Host  // Capabilities supplied by the embedding application.
	Timer Timer // Active delay and sound timer source.

	Memory   [MEMORY_SIZE]byte                     // Main memory.
	Display  [DISPLAY_WIDTH * DISPLAY_HEIGHT]uint8 // One byte (0 or 1) per pixel, row major.
	Register [16]uint8                             // v0 - vf
	I        uint16                                // Index register.
	Pc       uint16                                // Address of the next instruction.
	Stack    Stack                                 // Subroutine return addresses.
	Opcode   Code                                  // Most recently fetched instruction.

	Ticks int // Instructions executed since reset.

	timers Timers // Default timer source.
}

// NewCpu creates a CPU in its reset state. A nil host selects NopHost.
func NewCpu(host Host) (cpu *Cpu) {
	if host == nil {
		host = NopHost{}
	}

	cpu = &Cpu{
		Host: host,
	}
	cpu.Timer = &cpu.timers

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears memory, display, registers, and stack.
// - Installs the font glyphs at FONT_BASE.
// - Sets the program counter to PROGRAM_START.
// - Zeros both timers through the active timer source.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	clear(cpu.Display[:])
	clear(cpu.Register[:])
	cpu.Stack.Reset()

	copy(cpu.Memory[FONT_BASE:], Font[:])

	cpu.I = 0
	cpu.Pc = PROGRAM_START
	cpu.Opcode = 0
	cpu.Ticks = 0

	cpu.Timer.SetDelay(0)
	cpu.Timer.SetSound(0)
}

// Load copies a program image into memory at PROGRAM_START.
// An image larger than PROGRAM_MAX is rejected and nothing is written.
func (cpu *Cpu) Load(code []byte) (err error) {
	if len(code) > PROGRAM_MAX {
		err = ErrProgramTooLarge
		return
	}

	copy(cpu.Memory[PROGRAM_START:], code)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(code))
	}

	return
}

// Copy returns an independent duplicate of the CPU.
func (cpu *Cpu) Copy() (cpy *Cpu) {
	cpy = &Cpu{}
	cpu.CopyTo(cpy)
	return
}

// CopyTo replaces the entire state of dst, including its capabilities,
// with that of cpu. Timer values are read through the active timer source.
// A custom timer source is shared with dst; the default source is not.
func (cpu *Cpu) CopyTo(dst *Cpu) {
	delay := cpu.Timer.Delay()
	sound := cpu.Timer.Sound()

	*dst = Cpu{
		Verbose:  cpu.Verbose,
		Host:     cpu.Host,
		Memory:   cpu.Memory,
		Display:  cpu.Display,
		Register: cpu.Register,
		I:        cpu.I,
		Pc:       cpu.Pc,
		Stack:    cpu.Stack,
		Opcode:   cpu.Opcode,
		Ticks:    cpu.Ticks,
		timers:   Timers{DelayTimer: delay, SoundTimer: sound},
	}

	if cpu.Timer == Timer(&cpu.timers) {
		dst.Timer = &dst.timers
	} else {
		dst.Timer = cpu.Timer
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("%5s: %03X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("%5s: %03X\n", "i", cpu.I)
	text += fmt.Sprintf("%5s: %v\n", "op", cpu.Opcode)
	for n := 0; n < len(cpu.Register); n += 4 {
		text += fmt.Sprintf("%5s: %02X %02X %02X %02X\n", fmt.Sprintf("v%X", n),
			cpu.Register[n], cpu.Register[n+1], cpu.Register[n+2], cpu.Register[n+3])
	}
	strval := "---"
	if val, ok := cpu.Stack.Peek(); ok {
		strval = fmt.Sprintf("%03X", val)
	}
	text += fmt.Sprintf("%5s: %v (%d)\n", "stack", strval, cpu.Stack.Pointer)
	text += fmt.Sprintf("%5s: %02X\n", "dt", cpu.Timer.Delay())
	text += fmt.Sprintf("%5s: %02X\n", "st", cpu.Timer.Sound())

	return
}

// Pixel returns the display pixel at x, y, wrapping both coordinates.
func (cpu *Cpu) Pixel(x, y int) bool {
	x = ((x % DISPLAY_WIDTH) + DISPLAY_WIDTH) % DISPLAY_WIDTH
	y = ((y % DISPLAY_HEIGHT) + DISPLAY_HEIGHT) % DISPLAY_HEIGHT
	return cpu.Display[y*DISPLAY_WIDTH+x] != 0
}

// FetchCode reads the big-endian instruction word at the program counter.
func (cpu *Cpu) FetchCode() (code Code) {
	hi := cpu.Memory[cpu.Pc&MEMORY_MASK]
	lo := cpu.Memory[(cpu.Pc+1)&MEMORY_MASK]
	code = Code(uint16(hi)<<8 | uint16(lo))
	return
}

// Tick executes a single CPU instruction cycle.
// A returned error leaves the program counter unchanged, so the same
// instruction is attempted again on the next Tick.
func (cpu *Cpu) Tick() (err error) {
	code := cpu.FetchCode()
	cpu.Opcode = code

	err = cpu.Execute(code)

	cpu.Ticks++

	return
}
