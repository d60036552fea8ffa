package host

import (
	"strings"

	"github.com/ezrec/chip8/cpu"
)

// Render draws the display as text, packing two pixel rows into each line
// with half block characters.
func Render(display *[cpu.DISPLAY_WIDTH * cpu.DISPLAY_HEIGHT]uint8) string {
	var sb strings.Builder

	for y := 0; y < cpu.DISPLAY_HEIGHT; y += 2 {
		top := display[y*cpu.DISPLAY_WIDTH:]
		bottom := display[(y+1)*cpu.DISPLAY_WIDTH:]
		for x := range cpu.DISPLAY_WIDTH {
			switch {
			case top[x] != 0 && bottom[x] != 0:
				sb.WriteRune('█')
			case top[x] != 0:
				sb.WriteRune('▀')
			case bottom[x] != 0:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}

	return sb.String()
}
