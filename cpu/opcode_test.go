package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeDecode(t *testing.T) {
	assert := assert.New(t)

	code := Code(0xD5A7)
	assert.Equal(FAMILY_DRW, code.Family())
	assert.Equal(uint8(0x5), code.X())
	assert.Equal(uint8(0xA), code.Y())
	assert.Equal(uint8(0x7), code.N())
	assert.Equal(uint8(0xA7), code.NN())
	assert.Equal(uint16(0x5A7), code.NNN())
	assert.Equal([]byte{0xD5, 0xA7}, code.Bytes())
	assert.Equal("D5A7.drw", code.String())
}

func TestCodeMake(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		code Code
		word uint16
	}){
		{"jp", MakeCodeNNN(FAMILY_JP, 0x1234), 0x1234},
		{"ld_imm", MakeCodeXNN(FAMILY_LD_IMM, 0xa, 0x42), 0x6a42},
		{"drw", MakeCodeXYN(FAMILY_DRW, 1, 2, 0xf), 0xd12f},
		{"subn", MakeCodeAlu(ALU_OP_SUBN, 3, 4), 0x8347},
		{"shl", MakeCodeAlu(ALU_OP_SHL, 3, 4), 0x834e},
		{"sknp", MakeCodeKey(KEY_OP_SKNP, 0xc), 0xeca1},
		{"ld_b", MakeCodeMisc(MISC_OP_LD_B_VX, 2), 0xf233},
		{"mask", MakeCodeXNN(FAMILY_RND, 0x1f, 0xff), 0xcfff},
	}

	for _, entry := range table {
		assert.Equal(entry.word, uint16(entry.code), entry.name)
	}
}

func TestFamilyString(t *testing.T) {
	assert := assert.New(t)

	for family := FAMILY_SYS; family <= FAMILY_MISC; family++ {
		assert.NotContains(family.String(), "Family(")
	}
	assert.Equal("Family(16)", Family(16).String())
}

func TestErrOpcode(t *testing.T) {
	assert := assert.New(t)

	err := ErrOpcode(0xF0FF)
	assert.Equal("bad opcode 0xf0ff misc", err.Error())
	assert.ErrorIs(err, ErrOpcode(0))
}
