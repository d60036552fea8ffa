package host

import (
	"io"
	"log"
	"os"

	"github.com/ezrec/chip8/cpu"
)

// Logger writes machine diagnostics at or above Level to Output.
type Logger struct {
	Output *log.Logger
	Level  cpu.LogLevel

	closer io.Closer
}

// OpenLogger appends diagnostics to the file at path, or to stderr if path
// is empty.
func OpenLogger(path string, level cpu.LogLevel) (lg *Logger, err error) {
	if len(path) == 0 {
		lg = &Logger{
			Output: log.New(os.Stderr, "chip8 ", log.Ldate|log.Ltime),
			Level:  level,
		}
		return
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return
	}

	lg = &Logger{
		Output: log.New(file, "chip8 ", log.Ldate|log.Ltime),
		Level:  level,
		closer: file,
	}

	return
}

// Log records a message, if its level is high enough.
func (lg *Logger) Log(level cpu.LogLevel, source string, message string) {
	if lg == nil || lg.Output == nil || level < lg.Level {
		return
	}

	lg.Output.Printf("%v %v: %v", level, source, message)
}

// Close closes the log file, if one was opened.
func (lg *Logger) Close() (err error) {
	if lg == nil || lg.closer == nil {
		return
	}

	err = lg.closer.Close()
	lg.closer = nil

	return
}
