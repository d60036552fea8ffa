package cpu

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"runtime"
)

// LogLevel is the severity of a message sent to Host.Log.
type LogLevel int

const (
	LOG_DEBUG = LogLevel(0) // debug
	LOG_INFO  = LogLevel(1) // info
	LOG_WARN  = LogLevel(2) // warn
	LOG_ERROR = LogLevel(3) // error
	LOG_FATAL = LogLevel(4) // fatal
)

var _LogLevel_name = [...]string{"debug", "info", "warn", "error", "fatal"}

func (level LogLevel) String() string {
	if level < 0 || int(level) >= len(_LogLevel_name) {
		return fmt.Sprintf("LogLevel(%d)", int(level))
	}
	return _LogLevel_name[level]
}

// Host is the set of capabilities the CPU calls out to, supplied by the
// embedding application.
type Host interface {
	// Draw is called after every change to the display buffer.
	Draw(cpu *Cpu)
	// KeyState reports if the key is held down.
	KeyState(key uint8) bool
	// Beep is called once when the sound timer reaches zero.
	Beep(cpu *Cpu)
	// Rand returns a random integer.
	Rand() int
	// Log receives diagnostics, with the file:line of the core call site.
	Log(level LogLevel, source string, message string)
}

// NopHost is the default Host: nothing is drawn, no key is ever down,
// beeps and logs are dropped, and Rand uses math/rand.
type NopHost struct{}

var _ Host = NopHost{}

func (NopHost) Draw(cpu *Cpu) {}

func (NopHost) KeyState(key uint8) bool { return false }

func (NopHost) Beep(cpu *Cpu) {}

func (NopHost) Rand() int { return rand.Int() }

func (NopHost) Log(level LogLevel, source string, message string) {}

// logf forwards a formatted message to the host, tagged with the caller.
func (cpu *Cpu) logf(level LogLevel, format string, args ...any) {
	source := "?"
	_, file, line, ok := runtime.Caller(1)
	if ok {
		source = fmt.Sprintf("%v:%v", filepath.Base(file), line)
	}

	cpu.Host.Log(level, source, f(format, args...))
}
