package host

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestRender(t *testing.T) {
	assert := assert.New(t)

	var display [cpu.DISPLAY_WIDTH * cpu.DISPLAY_HEIGHT]uint8
	display[0*cpu.DISPLAY_WIDTH+0] = 1
	display[1*cpu.DISPLAY_WIDTH+0] = 1
	display[0*cpu.DISPLAY_WIDTH+1] = 1
	display[1*cpu.DISPLAY_WIDTH+2] = 1
	display[(cpu.DISPLAY_HEIGHT-1)*cpu.DISPLAY_WIDTH+cpu.DISPLAY_WIDTH-1] = 1

	lines := strings.Split(Render(&display), "\n")
	assert.Len(lines, cpu.DISPLAY_HEIGHT/2+1)
	assert.Equal("", lines[cpu.DISPLAY_HEIGHT/2])

	for _, line := range lines[:cpu.DISPLAY_HEIGHT/2] {
		assert.Equal(cpu.DISPLAY_WIDTH, len([]rune(line)))
	}

	assert.True(strings.HasPrefix(lines[0], "█▀▄ "))
	assert.True(strings.HasSuffix(lines[cpu.DISPLAY_HEIGHT/2-1], " ▄"))
}

func TestRenderFont(t *testing.T) {
	assert := assert.New(t)

	c := cpu.NewCpu(nil)
	// ld i, font 0; drw v0, v0, 5
	assert.NoError(c.Execute(cpu.MakeCodeMisc(cpu.MISC_OP_LD_F_VX, 0)))
	assert.NoError(c.Execute(cpu.MakeCodeXYN(cpu.FAMILY_DRW, 0, 0, cpu.FONT_HEIGHT)))

	lines := strings.Split(Render(&c.Display), "\n")
	assert.Equal("█▀▀█", lines[0][:len("█▀▀█")])
	assert.Equal("█  █", lines[1][:len("█  █")])
	assert.Equal("▀▀▀▀", lines[2][:len("▀▀▀▀")])
}
