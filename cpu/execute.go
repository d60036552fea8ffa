package cpu

import (
	"errors"
	"log"
)

// Execute executes a single decoded instruction.
// Every handler sets the program counter itself; on error it is left alone.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			cpu.logf(LOG_ERROR, "%03x: %v", cpu.Pc, err)
			err = errors.Join(ErrOpcode(code), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, code)
	}

	v := &cpu.Register
	x := code.X()
	y := code.Y()

	// Program counter on completion, unless the handler jumps or skips.
	next_pc := cpu.Pc + 2

	skip := func(cond bool) {
		if cond {
			next_pc += 2
		}
	}

	switch code.Family() {
	case FAMILY_SYS:
		switch code {
		case SYS_OP_CLS:
			clear(cpu.Display[:])
			cpu.Host.Draw(cpu)
		case SYS_OP_RET:
			next_pc = cpu.Stack.Pop() + 2
		default:
			// Machine code routines are not supported.
			err = ErrOpcodeSys
			return
		}
	case FAMILY_JP:
		next_pc = code.NNN()
	case FAMILY_CALL:
		if !cpu.Stack.Push(cpu.Pc) {
			err = errors.Join(ErrOpcodeCall, ErrStackFull)
			return
		}
		next_pc = code.NNN()
	case FAMILY_SE_IMM:
		skip(v[x] == code.NN())
	case FAMILY_SNE_IMM:
		skip(v[x] != code.NN())
	case FAMILY_SE_REG:
		skip(v[x] == v[y])
	case FAMILY_SNE_REG:
		skip(v[x] != v[y])
	case FAMILY_LD_IMM:
		v[x] = code.NN()
	case FAMILY_ADD_IMM:
		v[x] += code.NN()
	case FAMILY_ALU:
		err = cpu.doAlu(AluOp(code.N()), x, y)
		if err != nil {
			return
		}
	case FAMILY_LD_I:
		cpu.I = code.NNN()
	case FAMILY_JP_V0:
		next_pc = code.NNN() + uint16(v[0])
	case FAMILY_RND:
		v[x] = uint8(cpu.Host.Rand()&0xff) & code.NN()
	case FAMILY_DRW:
		v[REGISTER_FLAG] = cpu.drawSprite(v[x], v[y], code.N())
		cpu.Host.Draw(cpu)
	case FAMILY_KEY:
		switch KeyOp(code.NN()) {
		case KEY_OP_SKP:
			skip(cpu.Host.KeyState(v[x]))
		case KEY_OP_SKNP:
			skip(!cpu.Host.KeyState(v[x]))
		default:
			err = ErrOpcodeKey
			return
		}
	case FAMILY_MISC:
		var done bool
		done, err = cpu.doMisc(MiscOp(code.NN()), x)
		if err != nil {
			return
		}
		if !done {
			// Awaiting a key: run this instruction again next cycle.
			next_pc = cpu.Pc
		}
	}

	cpu.Pc = next_pc

	return
}

// doAlu performs the register to register operation on vx.
func (cpu *Cpu) doAlu(op AluOp, x, y uint8) (err error) {
	v := &cpu.Register

	switch op {
	case ALU_OP_LD:
		v[x] = v[y]
	case ALU_OP_OR:
		v[x] |= v[y]
	case ALU_OP_AND:
		v[x] &= v[y]
	case ALU_OP_XOR:
		v[x] ^= v[y]
	case ALU_OP_ADD:
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = uint8(sum)
		v[REGISTER_FLAG] = uint8(sum >> 8)
	case ALU_OP_SUB:
		// vf is 1 when there is no borrow.
		flag := flagOf(v[x] >= v[y])
		v[x] -= v[y]
		v[REGISTER_FLAG] = flag
	case ALU_OP_SHR:
		flag := v[x] & 0x1
		v[x] >>= 1
		v[REGISTER_FLAG] = flag
	case ALU_OP_SUBN:
		flag := flagOf(v[y] >= v[x])
		v[x] = v[y] - v[x]
		v[REGISTER_FLAG] = flag
	case ALU_OP_SHL:
		flag := v[x] >> 7
		v[x] <<= 1
		v[REGISTER_FLAG] = flag
	default:
		err = ErrOpcodeAlu
	}

	return
}

// doMisc performs the timer, index and memory block operations on vx.
// done is false while FX0A is waiting for a key.
func (cpu *Cpu) doMisc(op MiscOp, x uint8) (done bool, err error) {
	v := &cpu.Register

	done = true

	switch op {
	case MISC_OP_LD_VX_DT:
		v[x] = cpu.Timer.Delay()
	case MISC_OP_LD_VX_K:
		done = false
		for key := range uint8(16) {
			if cpu.Host.KeyState(key) {
				v[x] = key
				done = true
				break
			}
		}
	case MISC_OP_LD_DT_VX:
		cpu.Timer.SetDelay(v[x])
	case MISC_OP_LD_ST_VX:
		cpu.Timer.SetSound(v[x])
	case MISC_OP_ADD_I_VX:
		cpu.I += uint16(v[x])
	case MISC_OP_LD_F_VX:
		cpu.I = FONT_BASE + uint16(v[x]&0xf)*FONT_HEIGHT
	case MISC_OP_LD_B_VX:
		value := v[x]
		cpu.store(0, value/100)
		cpu.store(1, (value/10)%10)
		cpu.store(2, value%10)
	case MISC_OP_LD_I_VX:
		for n := range x + 1 {
			cpu.store(uint16(n), v[n])
		}
	case MISC_OP_LD_VX_I:
		for n := range x + 1 {
			v[n] = cpu.load(uint16(n))
		}
	default:
		err = ErrOpcodeMisc
	}

	return
}

// drawSprite XORs an 8 pixel wide sprite of height rows, read from I,
// onto the display at (xo, yo), wrapping at the edges. It returns 1 if any
// lit pixel was turned off.
func (cpu *Cpu) drawSprite(xo, yo uint8, height uint8) (collision uint8) {
	for row := range uint16(height) {
		bits := cpu.load(row)
		dy := (int(yo) + int(row)) % DISPLAY_HEIGHT
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			dx := (int(xo) + col) % DISPLAY_WIDTH
			pixel := &cpu.Display[dy*DISPLAY_WIDTH+dx]
			if *pixel != 0 {
				collision = 1
			}
			*pixel ^= 1
		}
	}

	return
}

// load reads memory at I+offset.
func (cpu *Cpu) load(offset uint16) byte {
	return cpu.Memory[(cpu.I+offset)&MEMORY_MASK]
}

// store writes memory at I+offset.
func (cpu *Cpu) store(offset uint16, value byte) {
	cpu.Memory[(cpu.I+offset)&MEMORY_MASK] = value
}

func flagOf(cond bool) uint8 {
	if cond {
		return 1
	}
	return 0
}
