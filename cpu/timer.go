package cpu

// Timer is a source for the delay and sound countdown timers.
// Hosts may substitute their own source for the default Timers.
type Timer interface {
	Delay() uint8
	SetDelay(value uint8)
	Sound() uint8
	SetSound(value uint8)
}

// Timers is the default Timer, backed by two plain counters.
type Timers struct {
	DelayTimer uint8
	SoundTimer uint8
}

var _ Timer = (*Timers)(nil)

func (t *Timers) Delay() uint8 { return t.DelayTimer }

func (t *Timers) SetDelay(value uint8) { t.DelayTimer = value }

func (t *Timers) Sound() uint8 { return t.SoundTimer }

func (t *Timers) SetSound(value uint8) { t.SoundTimer = value }

// TimerTick advances both timers by one count, never below zero.
// The host Beep is called on the tick that takes the sound timer
// from one to zero.
func (cpu *Cpu) TimerTick() {
	delay := cpu.Timer.Delay()
	sound := cpu.Timer.Sound()

	if delay > 0 {
		cpu.Timer.SetDelay(delay - 1)
	}

	if sound > 0 {
		if sound == 1 {
			cpu.Host.Beep(cpu)
		}
		cpu.Timer.SetSound(sound - 1)
	}
}
