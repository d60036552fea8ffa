package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// the bytes it generated.
type Opcode struct {
	LineNo    int      // Source line number.
	Address   int      // Load address of the first byte.
	Words     []string // Source words, after equate expansion.
	Data      []byte   // Generated bytes.
	IsData    bool     // Set for .byte and .word directives.
	LinkLabel string   // Label to link into the low 12 bits of the instruction.
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode that generated the byte at address.
func (prog *Program) Debug(address uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(address) >= op.Address && int(address) < op.Address+len(op.Data) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(address) - op.Address,
			}
			break
		}
	}

	return
}

// Binary returns the program image, to be loaded at PROGRAM_START.
func (prog *Program) Binary() (bins []byte) {
	for _, op := range prog.Opcodes {
		offset := op.Address - PROGRAM_START
		for len(bins) < offset {
			bins = append(bins, 0)
		}
		bins = append(bins[:offset], op.Data...)
	}

	return
}

// Codes iterates over the instructions, and their addresses, of the program.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(address uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if op.IsData || len(op.Data) != 2 {
				continue
			}
			code := Code(uint16(op.Data[0])<<8 | uint16(op.Data[1]))
			if !yield(uint16(op.Address), code) {
				return
			}
		}
	}
}
