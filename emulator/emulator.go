// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/host"
	"github.com/ezrec/chip8/internal"
)

const (
	CYCLES_PER_SECOND = 600 // Default instruction rate.
	CYCLES_PER_TIMER  = 10  // Default cycles per 60Hz timer tick.
)

var _emulator_defines = map[string]string{
	"CYCLES_PER_SECOND": fmt.Sprintf("%v", CYCLES_PER_SECOND),
	"CYCLES_PER_TIMER":  fmt.Sprintf("%v", CYCLES_PER_TIMER),
}

// Emulator state. CPU + keypad + sound + random source.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Rom      []byte       // Program image, used when Program is empty.

	CyclesPerTimer int // Cycles per timer tick; CYCLES_PER_TIMER if zero.

	Keypad host.Keypad  // Hex keypad.
	Random host.Random  // Random number source.
	Beeper *host.Beeper // Optional beep recorder.
	Logger *host.Logger // Optional diagnostics sink.

	OnDraw func(emu *Emulator) // Called after each display change.

	cycles int // Cycles since reset.
	stalls int // Consecutive cycles that did not move the program counter.
}

var _ cpu.Host = (*Emulator)(nil)

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &cpu.Program{},
	}

	emu.Cpu = cpu.NewCpu(emu)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Close the emulator, flushing any recorded sound.
func (emu *Emulator) Close() (err error) {
	if emu.Beeper != nil {
		err = emu.Beeper.Close()
	}

	return
}

// image returns the program image to load on reset.
func (emu *Emulator) image() []byte {
	if emu.Program != nil && len(emu.Program.Opcodes) != 0 {
		return emu.Program.Binary()
	}

	return emu.Rom
}

// Reset the machine, and load the program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Host = emu

	emu.Cpu.Reset()
	emu.Keypad.Reset()
	emu.Random.Reset()

	emu.cycles = 0
	emu.stalls = 0

	err = emu.Cpu.Load(emu.image())
	if err != nil {
		return
	}

	if emu.OnDraw != nil {
		emu.OnDraw(emu)
	}

	return
}

// Cycles returns the total cycles since a reset.
func (emu *Emulator) Cycles() int {
	return emu.cycles
}

// Stalls returns how many cycles in a row have ended at the same address.
// A key wait, a jump to itself and a faulting instruction all stall.
func (emu *Emulator) Stalls() int {
	return emu.stalls
}

// Halted is true when the current instruction is a jump to itself.
func (emu *Emulator) Halted() bool {
	code := emu.Cpu.FetchCode()
	return code.Family() == cpu.FAMILY_JP && code.NNN() == emu.Cpu.Pc
}

// Code returns the current instruction code.
func (emu *Emulator) Code() cpu.Code {
	return emu.Cpu.FetchCode()
}

// LineNo returns the source line number for the instruction at address.
func (emu *Emulator) LineNo(address uint16) int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(address)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single cycle of the emulator, and a timer tick every
// CyclesPerTimer cycles.
func (emu *Emulator) Tick() (err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{Address: pc, LineNo: emu.LineNo(pc), Err: err}
		}
	}()

	err = emu.Cpu.Tick()

	if emu.Cpu.Pc == pc {
		emu.stalls++
	} else {
		emu.stalls = 0
	}

	emu.cycles++

	per_timer := emu.CyclesPerTimer
	if per_timer <= 0 {
		per_timer = CYCLES_PER_TIMER
	}
	if emu.cycles%per_timer == 0 {
		emu.Cpu.TimerTick()
		emu.Keypad.Decay()
	}

	return
}

// Run performs cycles until the count is reached, the program halts, or an
// error occurs.
func (emu *Emulator) Run(cycles int) (err error) {
	for range cycles {
		if emu.Halted() {
			return
		}
		err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Draw forwards display updates to OnDraw.
func (emu *Emulator) Draw(c *cpu.Cpu) {
	if emu.OnDraw != nil {
		emu.OnDraw(emu)
	}
}

// KeyState reports the keypad state.
func (emu *Emulator) KeyState(key uint8) bool {
	return emu.Keypad.KeyState(key)
}

// Beep records a beep, if a Beeper is attached.
func (emu *Emulator) Beep(c *cpu.Cpu) {
	if emu.Verbose {
		log.Printf("emulator: beep at cycle %v", emu.cycles)
	}
	if emu.Beeper != nil {
		emu.Beeper.Beep()
	}
}

// Rand returns the next random number.
func (emu *Emulator) Rand() int {
	return emu.Random.Rand()
}

// Log forwards CPU diagnostics to the Logger.
func (emu *Emulator) Log(level cpu.LogLevel, source string, message string) {
	if emu.Verbose {
		log.Printf("emulator: %v %v: %v", level, source, message)
	}
	emu.Logger.Log(level, source, message)
}
