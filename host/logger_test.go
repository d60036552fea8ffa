package host

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestLogger(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	lg := &Logger{
		Output: log.New(&buf, "", 0),
		Level:  cpu.LOG_WARN,
	}

	lg.Log(cpu.LOG_INFO, "execute.go:10", "hidden")
	lg.Log(cpu.LOG_ERROR, "execute.go:13", "shown")

	assert.Equal("error execute.go:13: shown\n", buf.String())
	assert.NoError(lg.Close())

	var nilLogger *Logger
	assert.NotPanics(func() { nilLogger.Log(cpu.LOG_FATAL, "", "") })
}

func TestOpenLogger(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "chip8.log")

	lg, err := OpenLogger(path, cpu.LOG_DEBUG)
	assert.NoError(err)
	lg.Log(cpu.LOG_DEBUG, "cpu.go:1", "first")
	assert.NoError(lg.Close())

	lg, err = OpenLogger(path, cpu.LOG_DEBUG)
	assert.NoError(err)
	lg.Log(cpu.LOG_INFO, "cpu.go:2", "second")
	assert.NoError(lg.Close())

	data, err := os.ReadFile(path)
	assert.NoError(err)
	assert.Contains(string(data), "debug cpu.go:1: first\n")
	assert.Contains(string(data), "info cpu.go:2: second\n")

	_, err = OpenLogger(filepath.Join(path, "nope"), cpu.LOG_DEBUG)
	assert.Error(err)
}
