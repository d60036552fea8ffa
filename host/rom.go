package host

import (
	"io/fs"

	"github.com/ezrec/chip8/cpu"
)

// LoadRom reads a program image from a file system. The image must fit
// between PROGRAM_START and the end of memory.
func LoadRom(fsys fs.FS, name string) (data []byte, err error) {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return
	}

	if info.Size() > cpu.PROGRAM_MAX {
		err = ErrRomTooLarge
		return
	}

	data, err = fs.ReadFile(fsys, name)
	if err != nil {
		return
	}

	switch {
	case len(data) == 0:
		err = ErrRomEmpty
	case len(data) > cpu.PROGRAM_MAX:
		err = ErrRomTooLarge
	}
	if err != nil {
		data = nil
	}

	return
}
