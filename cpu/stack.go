package cpu

const (
	STACK_LIMIT = 16 // Maximum call depth
)

// Stack is the subroutine return address stack.
type Stack struct {
	Data    [STACK_LIMIT]uint16
	Pointer uint16
}

// Push stores a return address. A full stack is left unchanged.
func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	s.Data[s.Pointer] = value
	s.Pointer++
	return true
}

// Pop returns the most recent return address. The pointer is decremented
// modulo the stack size, so popping an empty stack yields the top slot and
// leaves the pointer at STACK_LIMIT-1.
func (s *Stack) Pop() (value uint16) {
	s.Pointer = (s.Pointer - 1) & (STACK_LIMIT - 1)
	return s.Data[s.Pointer]
}

func (s *Stack) Empty() bool {
	return s.Pointer == 0
}

func (s *Stack) Full() bool {
	return s.Pointer >= STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() || s.Pointer > STACK_LIMIT {
		return
	}

	return s.Data[s.Pointer-1], true
}

func (s *Stack) Reset() {
	clear(s.Data[:])
	s.Pointer = 0
}
