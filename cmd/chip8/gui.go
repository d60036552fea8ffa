package main

import (
	"fmt"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/jroimartin/gocui"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/host"
)

const (
	FRAMES_PER_SECOND = 30

	VIEW_DISPLAY   = "display"
	VIEW_REGISTERS = "registers"
	VIEW_STATUS    = "status"
)

// gui is the terminal frontend. The emulator is only touched by the run
// goroutine; key presses go through the thread-safe keypad.
type gui struct {
	emu *emulator.Emulator
	hz  int

	paused atomic.Bool
	reset  atomic.Bool
	dirty  bool
	status string

	frame func(screen, registers, status string) // Receives each rendered frame.
}

func newGui(emu *emulator.Emulator, hz int) (ui *gui) {
	ui = &gui{emu: emu, hz: hz, dirty: true}
	emu.OnDraw = func(*emulator.Emulator) { ui.dirty = true }

	return
}

func runGui(emu *emulator.Emulator, hz int) (err error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return
	}
	defer g.Close()

	ui := newGui(emu, hz)
	ui.frame = func(screen, registers, status string) {
		ui.show(g, screen, registers, status)
	}

	g.SetManagerFunc(ui.layout)

	err = ui.keybindings(g)
	if err != nil {
		return
	}

	stop := ui.start()
	defer stop()

	err = g.MainLoop()
	if err == gocui.ErrQuit {
		err = nil
	}

	return
}

func (ui *gui) keybindings(g *gocui.Gui) (err error) {
	err = g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit)
	if err != nil {
		return
	}

	err = g.SetKeybinding("", gocui.KeySpace, gocui.ModNone,
		func(*gocui.Gui, *gocui.View) error {
			ui.paused.Store(!ui.paused.Load())
			return nil
		})
	if err != nil {
		return
	}

	err = g.SetKeybinding("", gocui.KeyCtrlR, gocui.ModNone,
		func(*gocui.Gui, *gocui.View) error {
			ui.reset.Store(true)
			return nil
		})
	if err != nil {
		return
	}

	for ch, key := range host.KeyMap {
		press := func(*gocui.Gui, *gocui.View) error {
			ui.emu.Keypad.Press(key)
			return nil
		}
		for _, r := range []rune{ch, unicode.ToUpper(ch)} {
			err = g.SetKeybinding("", r, gocui.ModNone, press)
			if err != nil {
				return
			}
		}
	}

	return
}

func (ui *gui) layout(g *gocui.Gui) error {
	width := cpu.DISPLAY_WIDTH + 1
	height := cpu.DISPLAY_HEIGHT/2 + 1

	if v, err := g.SetView(VIEW_DISPLAY, 0, 0, width, height); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "CHIP-8"
	}

	if v, err := g.SetView(VIEW_REGISTERS, width+1, 0, width+20, height); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Registers"
	}

	if v, err := g.SetView(VIEW_STATUS, 0, height+1, width+20, height+3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
		v.Wrap = true
	}

	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

// start runs the emulator in its own goroutine. The returned stop function
// does not return until that goroutine has exited, so the emulator and its
// host devices may be closed after it.
func (ui *gui) start() (stop func()) {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ui.run(done)
	}()

	stop = func() {
		close(done)
		<-stopped
	}

	return
}

// run drives the emulator at ui.hz cycles per second, pushing the display
// to ui.frame FRAMES_PER_SECOND times a second.
func (ui *gui) run(done <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(ui.hz))
	defer ticker.Stop()

	per_frame := max(ui.hz/FRAMES_PER_SECOND, 1)
	cycle := 0
	paused := false

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		if ui.reset.Swap(false) {
			err := ui.emu.Reset()
			ui.status = "reset"
			if err != nil {
				ui.status = err.Error()
			}
			ui.dirty = true
		}

		if ui.paused.Load() != paused {
			paused = !paused
			ui.dirty = true
		}

		if !paused {
			err := ui.emu.Tick()
			if err != nil {
				// Faults repeat every cycle; report the first.
				if ui.emu.Stalls() <= 1 {
					ui.status = err.Error()
					ui.dirty = true
				}
			}
		}

		cycle++
		if cycle%per_frame != 0 || !ui.dirty {
			continue
		}
		ui.dirty = false

		ui.update()
	}
}

// update renders the machine state and hands it to ui.frame.
func (ui *gui) update() {
	screen := host.Render(&ui.emu.Cpu.Display)
	registers := fmt.Sprintf("%v%5s: %v\n", ui.emu.Cpu.String(), "next", ui.emu.Code())
	status := ui.status
	if ui.paused.Load() {
		status = "paused " + status
	}

	if ui.frame != nil {
		ui.frame(screen, registers, status)
	}
}

// show copies a frame to the views, from the gui goroutine.
func (ui *gui) show(g *gocui.Gui, screen, registers, status string) {
	g.Update(func(g *gocui.Gui) error {
		for name, text := range map[string]string{
			VIEW_DISPLAY:   screen,
			VIEW_REGISTERS: registers,
			VIEW_STATUS:    status,
		} {
			v, err := g.View(name)
			if err != nil {
				return err
			}
			v.Clear()
			fmt.Fprint(v, text)
		}
		return nil
	})
}
