package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, program ...string) (prog *Program, err error) {
	asm := &Assembler{}
	prog, err = asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0x200", asm.Equate["PROGRAM_START"])
	assert.Equal("0x1000", asm.Equate["MEMORY_SIZE"])
	assert.Equal("64", asm.Equate["DISPLAY_WIDTH"])
	assert.Equal("5", asm.Equate["FONT_HEIGHT"])
}

func TestAssemblerInstructions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		code Code
	}){
		{"cls", 0x00e0},
		{"ret", 0x00ee},
		{"sys 0x123", 0x0123},
		{"jp 0x345", 0x1345},
		{"jp v0, 0x345", 0xb345},
		{"call 0x456", 0x2456},
		{"se v1, 0x42", 0x3142},
		{"sne v1, 0x42", 0x4142},
		{"se v1, v2", 0x5120},
		{"sne v1, v2", 0x9120},
		{"ld v3, 255", 0x63ff},
		{"ld v3, -1", 0x63ff},
		{"ld v3, ~0x0f", 0x63f0},
		{"ld v3, v4", 0x8340},
		{"ld i, 0xabc", 0xaabc},
		{"ld v5, dt", 0xf507},
		{"ld v5, k", 0xf50a},
		{"ld dt, v5", 0xf515},
		{"ld st, v5", 0xf518},
		{"ld f, v5", 0xf529},
		{"ld b, v5", 0xf533},
		{"ld [i], v5", 0xf555},
		{"ld v5, [i]", 0xf565},
		{"add v6, 1", 0x7601},
		{"add v6, v7", 0x8674},
		{"add i, v7", 0xf71e},
		{"or v8, v9", 0x8891},
		{"and v8, v9", 0x8892},
		{"xor v8, v9", 0x8893},
		{"sub v8, v9", 0x8895},
		{"shr v8", 0x8806},
		{"shr v8, v9", 0x8896},
		{"subn v8, v9", 0x8897},
		{"shl v8", 0x880e},
		{"rnd va, 0x3f", 0xca3f},
		{"drw vb, vc, 15", 0xdbcf},
		{"skp vd", 0xed9e},
		{"sknp vd", 0xeda1},
		{"LD VF, 'A'", 0x6f41},
		{"ld v0,1", 0x6001},
	}

	for _, entry := range table {
		prog, err := assemble(t, entry.line)
		assert.NoError(err, entry.line)
		if err != nil {
			continue
		}
		assert.Equal(entry.code.Bytes(), prog.Binary(), entry.line)
	}
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		err  error
	}){
		{"frob v1", ErrInstructionInvalid},
		{"cls v1", ErrOpcodeExtraArgs},
		{"drw v1, v2", ErrOpcodeMissing},
		{"ld v1, 256", ErrValueRange},
		{"ld v1, -129", ErrValueRange},
		{"jp 0x1000", ErrValueRange},
		{"drw v1, v2, 16", ErrValueRange},
		{"ld vg, 1", ErrRegisterInvalid},
		{"jp v1, 0x200", ErrRegisterInvalid},
		{"ld k, v1", ErrOperandInvalid},
		{"ld v1, st", ErrOperandInvalid},
		{"ld v1, foo", ErrParseNumber("foo")},
		{"jp nowhere", ErrLabelMissing("nowhere")},
		{"x: x: cls", ErrLabelDuplicate},
		{".equ ONE", ErrEquateSyntax},
		{".endm", ErrMacroLonelyEndm},
		{".macro M\ncls", ErrMacroLonely},
		{".macro M\n.macro N", ErrMacroNesting},
		{".byte 0x100", ErrValueRange},
		{".word", ErrOpcodeMissing},
		{"ld v0, $(1 +)", nil},
	}

	for _, entry := range table {
		_, err := assemble(t, entry.line)
		assert.Error(err, entry.line)

		var syntax *ErrSyntax
		assert.True(errors.As(err, &syntax), entry.line)

		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.line)
		}
	}
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"start:",
		"  ld i, sprite  ; forward reference",
		"  call draw",
		"loop: jp loop",
		"draw:",
		"  drw v0, v1, 3",
		"  ret",
		"sprite: .byte 0x80 0x40",
		"  .byte 0x20",
		"sprite_end:",
		"  .word $(start)",
		"  .word $(sprite_end - sprite)",
	}

	prog, err := assemble(t, program...)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	// draw: is at 0x206, sprite: at 0x20a
	expected := []byte{
		0xa2, 0x0a,
		0x22, 0x06,
		0x12, 0x04,
		0xd0, 0x13,
		0x00, 0xee,
		0x80, 0x40, 0x20,
		0x02, 0x00,
		0x00, 0x03,
	}
	assert.Equal(expected, prog.Binary())

	dbg := prog.Debug(0x204)
	assert.Equal(4, dbg.LineNo)
	assert.Equal("loop", dbg.LinkLabel)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ COUNT 0x10",
		".equ PLAYER v3",
		"ld PLAYER, COUNT",
		".equ DOUBLE $(2 * COUNT)",
		"add PLAYER, DOUBLE",
		"ld v4, $(LINENO * 2)",
		"ld i, $(PROGRAM_START + 0x100)",
		"ld v5, $(FONT_HEIGHT * 0xa)",
	}

	prog, err := assemble(t, program...)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{
		0x63, 0x10,
		0x73, 0x20,
		0x64, 0x0c,
		0xa3, 0x00,
		0x65, 0x32,
	}
	assert.Equal(expected, prog.Binary())
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro SETADD rn a b",
		"ld rn, a",
		"add rn, b",
		".endm",
		".macro WAIT rn",
		"@spin: ld rn, dt",
		"se rn, 0",
		"jp @spin",
		".endm",
		"SETADD v0 8 8",
		"SETADD v1 $(0x10) v0",
		"WAIT v2",
	}

	prog, err := assemble(t, program...)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{
		0x60, 0x08,
		0x70, 0x08,
		0x61, 0x10,
		0x81, 0x04,
		0xf2, 0x07,
		0x32, 0x00,
		0x12, 0x08,
	}
	assert.Equal(expected, prog.Binary())
}

func TestAssemblerMacroError(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro BAD rn",
		"ld rn, 0x100",
		".endm",
		"BAD v0",
	}

	_, err := assemble(t, program...)
	assert.ErrorIs(err, ErrValueRange)

	var macro *ErrMacro
	assert.True(errors.As(err, &macro))
	assert.Equal("BAD", macro.Macro)
	assert.Equal(2, macro.Line)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("SPEED", "3")
	asm.Predefine("SPEED", "4")

	prog, err := asm.Parse(strings.NewReader("ld v0, SPEED"))
	assert.NoError(err)
	assert.Equal([]byte{0x60, 0x04}, prog.Binary())
}

func TestAssemblerTooLarge(t *testing.T) {
	assert := assert.New(t)

	lines := make([]string, PROGRAM_MAX/2+1)
	for n := range lines {
		lines[n] = "cls"
	}

	_, err := assemble(t, lines...)
	assert.ErrorIs(err, ErrProgramTooLarge)
}

func TestAssemblerRun(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"  ld v0, 0",
		"  ld v1, 10",
		"loop:",
		"  add v0, 3",
		"  add v1, -1",
		"  sne v1, 0",
		"  jp done",
		"  jp loop",
		"done:",
		"  ld i, $(PROGRAM_START + 0x100)",
		"  ld b, v0",
		"halt: jp halt",
	}

	prog, err := assemble(t, program...)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	cpu := NewCpu(nil)
	assert.NoError(cpu.Load(prog.Binary()))

	halt := uint16(prog.Opcodes[len(prog.Opcodes)-1].Address)
	for range 1000 {
		if cpu.Pc == halt {
			break
		}
		assert.NoError(cpu.Tick())
	}

	assert.Equal(halt, cpu.Pc)
	assert.Equal(uint8(30), cpu.Register[0])
	assert.Equal([]byte{0, 3, 0}, cpu.Memory[0x300:0x303])
}
