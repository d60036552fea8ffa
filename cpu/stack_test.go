package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.True(s.Empty())
	assert.False(s.Full())

	assert.True(s.Push(0x234))
	assert.False(s.Empty())
	assert.Equal(uint16(1), s.Pointer)
	assert.Equal(uint16(0x234), s.Data[0])
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x234)
	s.Push(0xabc)

	assert.Equal(uint16(0xabc), s.Pop())
	assert.Equal(uint16(1), s.Pointer)

	assert.Equal(uint16(0x234), s.Pop())
	assert.Equal(uint16(0), s.Pointer)
}

func TestStack_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Data[STACK_LIMIT-1] = 0x456

	assert.Equal(uint16(0x456), s.Pop())
	assert.Equal(uint16(STACK_LIMIT-1), s.Pointer)
	assert.False(s.Empty())
}

func TestStack_Peek(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x234)
	s.Push(0xabc)

	val, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(0xabc), val)
	assert.Equal(uint16(2), s.Pointer)
}

func TestStack_Peek_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	val, ok := s.Peek()
	assert.False(ok)
	assert.Equal(uint16(0), val)
}

func TestStack_Full(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}

	for i := 0; i < STACK_LIMIT; i++ {
		assert.False(s.Full())
		assert.True(s.Push(uint16(i)))
	}

	assert.True(s.Full())
	assert.False(s.Push(0xfff))
	assert.Equal(uint16(STACK_LIMIT), s.Pointer)
	assert.Equal(uint16(STACK_LIMIT-1), s.Data[STACK_LIMIT-1])

	val, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(STACK_LIMIT-1), val)
}

func TestStack_Reset(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x234)
	s.Push(0xabc)

	s.Reset()
	assert.True(s.Empty())
	assert.Equal(Stack{}, *s)
}
