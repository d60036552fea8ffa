// Package cpu implements the processor and assembler for the CHIP-8 virtual
// machine.
//
// The CPU consists of 4 KiB of byte addressed memory with the hexadecimal
// font glyphs at its base, sixteen 8-bit registers (v0-vf), a 16-bit index
// register (I), a program counter, a sixteen entry call stack, delay and
// sound countdown timers, and a 64x32 monochrome display buffer. Programs
// are loaded at PROGRAM_START and executed one instruction per Tick.
//
// Everything outside the core (rendering, key polling, audio, random numbers
// and logging) is reached through the Host interface supplied by the
// embedding application.
//
// The assembler provides a conventional CHIP-8 assembly language, supporting
// macros, labels, equates, and compile-time expression evaluation.
package cpu
