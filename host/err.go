package host

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Rom errors
	ErrRomTooLarge = errors.New(f("rom too large"))
	ErrRomEmpty    = errors.New(f("rom empty"))
)
