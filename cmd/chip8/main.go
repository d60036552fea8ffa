// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/host"
	"github.com/ezrec/chip8/translate"
)

type options struct {
	compile  string
	rom      string
	hz       int
	perTimer int
	wavfile  string
	logfile  string
	verbose  bool
	headless int
	zeroSeed bool
	listing  bool
	locale   string
}

func main() {
	var opts options

	flag.StringVar(&opts.compile, "c", "", ".c8s file to assemble and run")
	flag.StringVar(&opts.rom, "r", "", ".ch8 ROM image to run")
	flag.IntVar(&opts.hz, "hz", emulator.CYCLES_PER_SECOND, "Cycles per second")
	flag.IntVar(&opts.perTimer, "t", emulator.CYCLES_PER_TIMER, "Cycles per timer tick")
	flag.StringVar(&opts.wavfile, "w", "", "Record beeps to a .wav file")
	flag.StringVar(&opts.logfile, "l", "", "Log file")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose mode")
	flag.IntVar(&opts.headless, "n", 0, "Run headless for N cycles, then print the display")
	flag.BoolVar(&opts.zeroSeed, "z", false, "Repeatable random numbers")
	flag.BoolVar(&opts.listing, "s", false, "Print the assembled instruction listing, then exit")
	flag.StringVar(&opts.locale, "locale", "", "Message locale, overriding the host locale")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if (len(opts.compile) == 0) == (len(opts.rom) == 0) {
		log.Fatalf("%v: exactly one of -c or -r is required", os.Args[0])
	}

	if opts.hz <= 0 || opts.perTimer <= 0 {
		log.Fatalf("%v: -hz and -t must be positive", os.Args[0])
	}

	if len(opts.locale) != 0 {
		err := translate.SetLocale(opts.locale)
		if err != nil {
			log.Fatalf("%v: -locale %v: %v", os.Args[0], opts.locale, err)
		}
	}

	err := run(&opts)
	if err != nil {
		log.Fatal(err)
	}
}

// run sets up the emulator and runs it until the user quits, or the
// headless cycle count is reached.
func run(opts *options) (err error) {
	emu := emulator.NewEmulator()
	emu.Verbose = opts.verbose
	emu.CyclesPerTimer = opts.perTimer
	emu.Random.ZeroSeed = opts.zeroSeed

	// Assemble a program.
	if len(opts.compile) != 0 {
		inf, err := os.Open(opts.compile)
		if err != nil {
			return err
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: opts.verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			return fmt.Errorf("%v: %w", opts.compile, err)
		}

		if opts.listing {
			list(os.Stdout, emu.Program)
			return nil
		}
	}

	// Or load a ROM image.
	if len(opts.rom) != 0 {
		emu.Rom, err = host.LoadRom(os.DirFS(filepath.Dir(opts.rom)), filepath.Base(opts.rom))
		if err != nil {
			return fmt.Errorf("%v: %w", opts.rom, err)
		}
	}

	// The interactive display owns the terminal, so only log to stderr
	// when headless.
	if len(opts.logfile) != 0 || opts.headless > 0 {
		logger, err := host.OpenLogger(opts.logfile, cpu.LOG_INFO)
		if err != nil {
			return err
		}
		defer logger.Close()
		emu.Logger = logger
	}

	if len(opts.wavfile) != 0 {
		ouf, err := os.Create(opts.wavfile)
		if err != nil {
			return err
		}
		defer ouf.Close()
		emu.Beeper = &host.Beeper{Verbose: opts.verbose, Output: ouf}
	}

	defer func() {
		cerr := emu.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = emu.Reset()
	if err != nil {
		return
	}

	if opts.headless > 0 {
		err = emu.Run(opts.headless)
		fmt.Print(host.Render(&emu.Cpu.Display))
		fmt.Print(emu.Cpu.String())
		return
	}

	err = runGui(emu, opts.hz)

	return
}

// list prints each instruction of the program with its address and source
// line.
func list(w io.Writer, prog *cpu.Program) {
	for address, code := range prog.Codes() {
		fmt.Fprintf(w, "%03X: %v ; line %d\n", address, code, prog.Debug(address).LineNo)
	}
}
