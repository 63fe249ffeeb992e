package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_Push(t *testing.T) {
	assert := assert.New(t)

	h := &History{}
	assert.True(h.Empty())
	assert.Nil(h.Top())

	h.Push(Record{Pc: 0x1000})
	assert.False(h.Empty())
	assert.Equal(1, h.Len())
	assert.Equal(uint32(0x1000), h.Top().Pc)
}

func TestHistory_Pop(t *testing.T) {
	assert := assert.New(t)

	h := &History{}
	h.Push(Record{Pc: 0x1000})
	h.Push(Record{Pc: 0x1004})

	rec, ok := h.Pop()
	assert.True(ok)
	assert.Equal(uint32(0x1004), rec.Pc)
	assert.Equal(1, h.Len())

	rec, ok = h.Pop()
	assert.True(ok)
	assert.Equal(uint32(0x1000), rec.Pc)
	assert.True(h.Empty())

	rec, ok = h.Pop()
	assert.False(ok)
	assert.Equal(Record{}, rec)
}

func TestHistory_LimitRing(t *testing.T) {
	assert := assert.New(t)

	h := &History{Limit: 3}
	for pc := range uint32(10) {
		h.Push(Record{Pc: pc})
	}
	assert.Equal(3, h.Len())

	for _, pc := range []uint32{9, 8, 7} {
		rec, ok := h.Pop()
		assert.True(ok)
		assert.Equal(pc, rec.Pc)
	}
	assert.True(h.Empty())

	// Refill after wrapping.
	h.Push(Record{Pc: 20})
	h.Push(Record{Pc: 21})
	assert.Equal(uint32(21), h.Top().Pc)
	rec, _ := h.Pop()
	assert.Equal(uint32(21), rec.Pc)
	rec, _ = h.Pop()
	assert.Equal(uint32(20), rec.Pc)
}

func TestHistory_Reset(t *testing.T) {
	assert := assert.New(t)

	for _, limit := range []int{0, 2} {
		h := &History{Limit: limit}
		h.Push(Record{Pc: 1})
		h.Push(Record{Pc: 2})
		h.Push(Record{Pc: 3})
		h.Reset()
		assert.True(h.Empty())

		h.Push(Record{Pc: 4})
		assert.Equal(uint32(4), h.Top().Pc)
	}
}
