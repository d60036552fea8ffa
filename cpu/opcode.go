package cpu

import (
	"fmt"
)

// Family is the top nibble of an instruction word.
type Family int

const (
	FAMILY_SYS     = Family(0x0) // sys
	FAMILY_JP      = Family(0x1) // jp
	FAMILY_CALL    = Family(0x2) // call
	FAMILY_SE_IMM  = Family(0x3) // se.imm
	FAMILY_SNE_IMM = Family(0x4) // sne.imm
	FAMILY_SE_REG  = Family(0x5) // se.reg
	FAMILY_LD_IMM  = Family(0x6) // ld.imm
	FAMILY_ADD_IMM = Family(0x7) // add.imm
	FAMILY_ALU     = Family(0x8) // alu
	FAMILY_SNE_REG = Family(0x9) // sne.reg
	FAMILY_LD_I    = Family(0xA) // ld.i
	FAMILY_JP_V0   = Family(0xB) // jp.v0
	FAMILY_RND     = Family(0xC) // rnd
	FAMILY_DRW     = Family(0xD) // drw
	FAMILY_KEY     = Family(0xE) // key
	FAMILY_MISC    = Family(0xF) // misc
)

var _Family_name = [...]string{
	"sys", "jp", "call", "se.imm", "sne.imm", "se.reg", "ld.imm", "add.imm",
	"alu", "sne.reg", "ld.i", "jp.v0", "rnd", "drw", "key", "misc",
}

func (family Family) String() string {
	if family < 0 || int(family) >= len(_Family_name) {
		return fmt.Sprintf("Family(%d)", int(family))
	}
	return _Family_name[family]
}

// Sub-operations of FAMILY_SYS, matched against the whole word.
const (
	SYS_OP_CLS = Code(0x00E0)
	SYS_OP_RET = Code(0x00EE)
)

// AluOp selects a FAMILY_ALU operation, from the low nibble.
type AluOp uint8

const (
	ALU_OP_LD   = AluOp(0x0) // ld
	ALU_OP_OR   = AluOp(0x1) // or
	ALU_OP_AND  = AluOp(0x2) // and
	ALU_OP_XOR  = AluOp(0x3) // xor
	ALU_OP_ADD  = AluOp(0x4) // add
	ALU_OP_SUB  = AluOp(0x5) // sub
	ALU_OP_SHR  = AluOp(0x6) // shr
	ALU_OP_SUBN = AluOp(0x7) // subn
	ALU_OP_SHL  = AluOp(0xE) // shl
)

// KeyOp selects a FAMILY_KEY operation, from the low byte.
type KeyOp uint8

const (
	KEY_OP_SKP  = KeyOp(0x9E) // skp
	KEY_OP_SKNP = KeyOp(0xA1) // sknp
)

// MiscOp selects a FAMILY_MISC operation, from the low byte.
type MiscOp uint8

const (
	MISC_OP_LD_VX_DT = MiscOp(0x07) // ld vx, dt
	MISC_OP_LD_VX_K  = MiscOp(0x0A) // ld vx, k
	MISC_OP_LD_DT_VX = MiscOp(0x15) // ld dt, vx
	MISC_OP_LD_ST_VX = MiscOp(0x18) // ld st, vx
	MISC_OP_ADD_I_VX = MiscOp(0x1E) // add i, vx
	MISC_OP_LD_F_VX  = MiscOp(0x29) // ld f, vx
	MISC_OP_LD_B_VX  = MiscOp(0x33) // ld b, vx
	MISC_OP_LD_I_VX  = MiscOp(0x55) // ld [i], vx
	MISC_OP_LD_VX_I  = MiscOp(0x65) // ld vx, [i]
)

// Code is a single big-endian instruction word.
type Code uint16

// MakeCodeNNN creates an instruction with a 12-bit address operand.
func MakeCodeNNN(family Family, nnn uint16) Code {
	return Code((uint16(family) << 12) | (nnn & 0xfff))
}

// MakeCodeXNN creates an instruction with a register and a byte operand.
func MakeCodeXNN(family Family, x uint8, nn uint8) Code {
	return Code((uint16(family) << 12) | (uint16(x&0xf) << 8) | uint16(nn))
}

// MakeCodeXYN creates an instruction with two registers and a nibble operand.
func MakeCodeXYN(family Family, x, y, n uint8) Code {
	return Code((uint16(family) << 12) | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4) | uint16(n&0xf))
}

// MakeCodeAlu creates a register to register ALU instruction.
func MakeCodeAlu(op AluOp, x, y uint8) Code {
	return MakeCodeXYN(FAMILY_ALU, x, y, uint8(op))
}

// MakeCodeKey creates a key test instruction.
func MakeCodeKey(op KeyOp, x uint8) Code {
	return MakeCodeXNN(FAMILY_KEY, x, uint8(op))
}

// MakeCodeMisc creates a timer, index or memory block instruction.
func MakeCodeMisc(op MiscOp, x uint8) Code {
	return MakeCodeXNN(FAMILY_MISC, x, uint8(op))
}

// Family returns the handler family, from the top nibble.
func (code Code) Family() Family {
	return Family((code >> 12) & 0xf)
}

// X returns the first register index.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xf)
}

// Y returns the second register index.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xf)
}

// N returns the low nibble.
func (code Code) N() uint8 {
	return uint8(code & 0xf)
}

// NN returns the low byte.
func (code Code) NN() uint8 {
	return uint8(code & 0xff)
}

// NNN returns the low 12 bits.
func (code Code) NNN() uint16 {
	return uint16(code & 0xfff)
}

// Bytes returns the instruction in memory order.
func (code Code) Bytes() []byte {
	return []byte{byte(code >> 8), byte(code)}
}

func (code Code) String() string {
	return fmt.Sprintf("%04X.%v", uint16(code), code.Family())
}
