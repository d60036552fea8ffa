package host

import (
	"io"
	"log"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	BEEPER_SAMPLE_RATE = 22050
	BEEPER_BIT_DEPTH   = 16
	BEEPER_TONE        = 440                    // Hz
	BEEPER_DURATION    = 100 * time.Millisecond // Default length of a beep.
	BEEPER_AMPLITUDE   = 0x2000
)

// Beeper collects beeps as a square wave tone, and encodes them as a WAV
// file when closed.
type Beeper struct {
	Verbose  bool
	Output   io.WriteSeeker // WAV destination; beeps are only counted if nil.
	Tone     int            // Hz; BEEPER_TONE if zero.
	Duration time.Duration  // BEEPER_DURATION if zero.

	Beeps int // Beeps since creation.

	samples []int
}

// Beep appends one tone to the recording.
func (bp *Beeper) Beep() {
	bp.Beeps++

	if bp.Output == nil {
		return
	}

	tone := bp.Tone
	if tone <= 0 {
		tone = BEEPER_TONE
	}
	duration := bp.Duration
	if duration <= 0 {
		duration = BEEPER_DURATION
	}

	count := int(duration * BEEPER_SAMPLE_RATE / time.Second)
	// A square wave needs at least one high and one low sample.
	period := max(BEEPER_SAMPLE_RATE/tone, 2)
	for n := range count {
		sample := BEEPER_AMPLITUDE
		if (n % period) >= period/2 {
			sample = -BEEPER_AMPLITUDE
		}
		bp.samples = append(bp.samples, sample)
	}
}

// Samples returns the number of recorded samples.
func (bp *Beeper) Samples() int {
	return len(bp.samples)
}

// Close encodes the recording to Output.
func (bp *Beeper) Close() (err error) {
	if bp.Output == nil {
		return
	}

	if bp.Verbose {
		log.Printf("beeper: %v beeps, %v samples", bp.Beeps, len(bp.samples))
	}

	enc := wav.NewEncoder(bp.Output, BEEPER_SAMPLE_RATE, BEEPER_BIT_DEPTH, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  BEEPER_SAMPLE_RATE,
		},
		Data:           bp.samples,
		SourceBitDepth: BEEPER_BIT_DEPTH,
	}

	err = enc.Write(buf)
	if err != nil {
		return
	}

	err = enc.Close()
	if err != nil {
		return
	}

	bp.samples = nil

	return
}
