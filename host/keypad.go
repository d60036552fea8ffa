package host

import (
	"sync"
	"unicode"
)

const (
	KEYPAD_KEYS = 16
	KEYPAD_HOLD = 4 // Default timer ticks a key press is held for.
)

// KeyMap maps the left hand side of a QWERTY keyboard onto the hex keypad.
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var KeyMap = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyOf returns the keypad key for a keyboard rune.
func KeyOf(ch rune) (key uint8, ok bool) {
	key, ok = KeyMap[unicode.ToLower(ch)]
	return
}

// Keypad is the state of the 16 key hex keypad.
//
// Terminals report key presses but not releases, so a press holds the key
// down for Hold calls of Decay, unless it is released first.
type Keypad struct {
	Hold int // Decay calls a press lasts; KEYPAD_HOLD if zero.

	mutex sync.Mutex
	held  [KEYPAD_KEYS]int
}

// Press holds a key down.
func (kp *Keypad) Press(key uint8) {
	if key >= KEYPAD_KEYS {
		return
	}

	hold := kp.Hold
	if hold <= 0 {
		hold = KEYPAD_HOLD
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.held[key] = hold
}

// Release lets a key up.
func (kp *Keypad) Release(key uint8) {
	if key >= KEYPAD_KEYS {
		return
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.held[key] = 0
}

// Decay counts down the hold time of every pressed key.
func (kp *Keypad) Decay() {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	for n, hold := range kp.held {
		if hold > 0 {
			kp.held[n] = hold - 1
		}
	}
}

// Reset releases all keys.
func (kp *Keypad) Reset() {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	clear(kp.held[:])
}

// KeyState reports if a key is down. Keys past 0xF are never down.
func (kp *Keypad) KeyState(key uint8) bool {
	if key >= KEYPAD_KEYS {
		return false
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	return kp.held[key] > 0
}
