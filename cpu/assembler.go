// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Assembler is a single pass macro assembler for CHIP-8 programs.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Count of macro expansions, for '@' label mangling.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\(([^()]|\([^()]*\))*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
)

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	value, err = strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// rangeOf returns the value of a word, limited to a signed or unsigned
// field of the given number of bits.
func (asm *Assembler) rangeOf(word string, bits uint) (value uint16, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v64 < -(1<<(bits-1)) || v64 >= (1<<bits) {
		err = ErrValueRange
		return
	}

	value = uint16(v64) & ((1 << bits) - 1)
	return
}

// byteOf returns the 8-bit value of a word.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v16, err := asm.rangeOf(word, 8)
	value = uint8(v16)
	return
}

// nibbleOf returns the 4-bit value of a word.
func (asm *Assembler) nibbleOf(word string) (value uint8, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v64 < 0 || v64 > 0xf {
		err = ErrValueRange
		return
	}

	value = uint8(v64)
	return
}

// addressOf returns a 12-bit address, or the label to link it to.
func (asm *Assembler) addressOf(word string) (nnn uint16, label string, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		var errNumber ErrParseNumber
		if errors.As(err, &errNumber) && reLabel.MatchString(word) {
			err = nil
			label = word
		}
		return
	}

	if v64 < 0 || v64 > 0xfff {
		err = ErrValueRange
		return
	}

	nnn = uint16(v64)
	return
}

// registerOf returns the register index of a vN word.
func registerOf(word string) (x uint8, ok bool) {
	if len(word) != 2 || (word[0] != 'v' && word[0] != 'V') {
		return
	}

	n, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	return uint8(n), true
}

// mustRegister returns the register index of a vN word, or an error.
func mustRegister(word string) (x uint8, err error) {
	x, ok := registerOf(word)
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	err = nil
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(address)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// splitWords splits a line at spaces and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddress()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		mangle := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", mangle)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddress gets the load address of the next opcode.
func (asm *Assembler) currentAddress() int {
	if len(asm.Opcode) == 0 {
		return PROGRAM_START
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Address + len(last.Data)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.expansions = 0
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(_cpu_defines)
	asm.Equate["LINENO"] = "0"
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	if asm.currentAddress() > MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		address, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if address > 0xfff {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrValueRange
			return
		}
		op.Data[0] = (op.Data[0] & 0xf0) | uint8(address>>8)
		op.Data[1] = uint8(address)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// aluMap maps register to register ALU opcode names.
var aluMap = map[string]AluOp{
	"or":   ALU_OP_OR,
	"and":  ALU_OP_AND,
	"xor":  ALU_OP_XOR,
	"sub":  ALU_OP_SUB,
	"subn": ALU_OP_SUBN,
	"shr":  ALU_OP_SHR,
	"shl":  ALU_OP_SHL,
}

// miscStore maps `ld <dst>, vx` destinations.
var miscStore = map[string]MiscOp{
	"dt":  MISC_OP_LD_DT_VX,
	"st":  MISC_OP_LD_ST_VX,
	"f":   MISC_OP_LD_F_VX,
	"b":   MISC_OP_LD_B_VX,
	"[i]": MISC_OP_LD_I_VX,
}

// miscLoad maps `ld vx, <src>` sources.
var miscLoad = map[string]MiscOp{
	"dt":  MISC_OP_LD_VX_DT,
	"k":   MISC_OP_LD_VX_K,
	"[i]": MISC_OP_LD_VX_I,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var label string
	var is_data bool

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(data) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Address: asm.currentAddress(), Words: initial_words,
			Data: data, IsData: is_data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	emit := func(code Code) {
		data = append(data, code.Bytes()...)
	}

	address := func(word string) (nnn uint16, err error) {
		var link string
		nnn, link, err = asm.addressOf(word)
		if len(link) != 0 {
			label = link
		}
		return
	}

	op := strings.ToLower(words[0])
	args := words[1:]

	want := func(n int) error {
		switch {
		case len(args) < n:
			return ErrOpcodeMissing
		case len(args) > n:
			return ErrOpcodeExtraArgs
		}
		return nil
	}

	// Normalized operand keyword, or "" for registers and values.
	keyword := func(word string) string {
		lower := strings.ToLower(word)
		switch lower {
		case "i", "dt", "st", "k", "f", "b", "[i]":
			return lower
		}
		return ""
	}

	switch op {
	case ".byte":
		if len(args) == 0 {
			err = ErrOpcodeMissing
			return
		}
		is_data = true
		for _, arg := range args {
			var value uint8
			value, err = asm.byteOf(arg)
			if err != nil {
				return
			}
			data = append(data, value)
		}
	case ".word":
		if len(args) == 0 {
			err = ErrOpcodeMissing
			return
		}
		is_data = true
		for _, arg := range args {
			var value uint16
			value, err = asm.rangeOf(arg, 16)
			if err != nil {
				return
			}
			data = append(data, Code(value).Bytes()...)
		}
	case "cls":
		if err = want(0); err != nil {
			return
		}
		emit(SYS_OP_CLS)
	case "ret":
		if err = want(0); err != nil {
			return
		}
		emit(SYS_OP_RET)
	case "sys", "call", "jp":
		family := map[string]Family{"sys": FAMILY_SYS, "call": FAMILY_CALL, "jp": FAMILY_JP}[op]
		if op == "jp" && len(args) == 2 {
			// jp v0, NNN
			if x, ok := registerOf(args[0]); !ok || x != 0 {
				err = ErrRegisterInvalid
				return
			}
			family = FAMILY_JP_V0
			args = args[1:]
		}
		if err = want(1); err != nil {
			return
		}
		var nnn uint16
		nnn, err = address(args[0])
		if err != nil {
			return
		}
		emit(MakeCodeNNN(family, nnn))
	case "se", "sne":
		if err = want(2); err != nil {
			return
		}
		var x uint8
		x, err = mustRegister(args[0])
		if err != nil {
			return
		}
		if y, ok := registerOf(args[1]); ok {
			family := FAMILY_SE_REG
			if op == "sne" {
				family = FAMILY_SNE_REG
			}
			emit(MakeCodeXYN(family, x, y, 0))
			break
		}
		var nn uint8
		nn, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		family := FAMILY_SE_IMM
		if op == "sne" {
			family = FAMILY_SNE_IMM
		}
		emit(MakeCodeXNN(family, x, nn))
	case "ld":
		if err = want(2); err != nil {
			return
		}
		dst := keyword(args[0])
		src := keyword(args[1])
		switch {
		case dst == "i":
			var nnn uint16
			nnn, err = address(args[1])
			if err != nil {
				return
			}
			emit(MakeCodeNNN(FAMILY_LD_I, nnn))
		case len(dst) != 0:
			misc, ok := miscStore[dst]
			if !ok {
				err = ErrOperandInvalid
				return
			}
			var x uint8
			x, err = mustRegister(args[1])
			if err != nil {
				return
			}
			emit(MakeCodeMisc(misc, x))
		default:
			var x uint8
			x, err = mustRegister(args[0])
			if err != nil {
				return
			}
			if len(src) != 0 {
				misc, ok := miscLoad[src]
				if !ok {
					err = ErrOperandInvalid
					return
				}
				emit(MakeCodeMisc(misc, x))
				break
			}
			if y, ok := registerOf(args[1]); ok {
				emit(MakeCodeAlu(ALU_OP_LD, x, y))
				break
			}
			var nn uint8
			nn, err = asm.byteOf(args[1])
			if err != nil {
				return
			}
			emit(MakeCodeXNN(FAMILY_LD_IMM, x, nn))
		}
	case "add":
		if err = want(2); err != nil {
			return
		}
		if keyword(args[0]) == "i" {
			var x uint8
			x, err = mustRegister(args[1])
			if err != nil {
				return
			}
			emit(MakeCodeMisc(MISC_OP_ADD_I_VX, x))
			break
		}
		var x uint8
		x, err = mustRegister(args[0])
		if err != nil {
			return
		}
		if y, ok := registerOf(args[1]); ok {
			emit(MakeCodeAlu(ALU_OP_ADD, x, y))
			break
		}
		var nn uint8
		nn, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		emit(MakeCodeXNN(FAMILY_ADD_IMM, x, nn))
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		alu := aluMap[op]
		if (alu == ALU_OP_SHR || alu == ALU_OP_SHL) && len(args) == 1 {
			// shr vx => shr vx, v0
			args = append(args, "v0")
		}
		if err = want(2); err != nil {
			return
		}
		var x, y uint8
		x, err = mustRegister(args[0])
		if err != nil {
			return
		}
		y, err = mustRegister(args[1])
		if err != nil {
			return
		}
		emit(MakeCodeAlu(alu, x, y))
	case "rnd":
		if err = want(2); err != nil {
			return
		}
		var x, nn uint8
		x, err = mustRegister(args[0])
		if err != nil {
			return
		}
		nn, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		emit(MakeCodeXNN(FAMILY_RND, x, nn))
	case "drw":
		if err = want(3); err != nil {
			return
		}
		var x, y, n uint8
		x, err = mustRegister(args[0])
		if err != nil {
			return
		}
		y, err = mustRegister(args[1])
		if err != nil {
			return
		}
		n, err = asm.nibbleOf(args[2])
		if err != nil {
			return
		}
		emit(MakeCodeXYN(FAMILY_DRW, x, y, n))
	case "skp", "sknp":
		if err = want(1); err != nil {
			return
		}
		var x uint8
		x, err = mustRegister(args[0])
		if err != nil {
			return
		}
		key := KEY_OP_SKP
		if op == "sknp" {
			key = KEY_OP_SKNP
		}
		emit(MakeCodeKey(key, x))
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
