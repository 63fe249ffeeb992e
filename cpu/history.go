package cpu

import (
	"github.com/ezrec/rvasm/isa"
)

// Record is the undo information of one executed instruction.
type Record struct {
	Pc    uint32 // Address of the instruction.
	State State  // State before the instruction executed.

	Reg      isa.Register // Changed register, REG_ZERO for none.
	RegPrior uint32       // Prior value of Reg.

	MemAddr  uint32 // Start of the changed memory range.
	MemPrior []byte // Prior contents of the range, nil for none.
}

// History is a bounded stack of records. When full, pushing drops the
// oldest record.
type History struct {
	Limit int // Maximum depth; unbounded when zero.

	records []Record
	start   int
	count   int
}

func (h *History) Push(rec Record) {
	if h.Limit <= 0 {
		h.records = append(h.records, rec)
		h.count++
		return
	}

	if h.records == nil {
		h.records = make([]Record, h.Limit)
	}

	if h.count == h.Limit {
		h.records[h.start] = rec
		h.start = (h.start + 1) % h.Limit
		return
	}

	h.records[(h.start+h.count)%h.Limit] = rec
	h.count++
}

func (h *History) index(n int) int {
	if h.Limit <= 0 {
		return n
	}
	return (h.start + n) % h.Limit
}

func (h *History) Pop() (rec Record, ok bool) {
	top := h.Top()
	if top == nil {
		return
	}

	rec, ok = *top, true
	*top = Record{}
	h.count--
	if h.Limit <= 0 {
		h.records = h.records[:h.count]
	}
	return
}

// Top is the most recent record, or nil.
func (h *History) Top() *Record {
	if h.Empty() {
		return nil
	}
	return &h.records[h.index(h.count-1)]
}

func (h *History) Empty() bool {
	return h.count == 0
}

func (h *History) Len() int {
	return h.count
}

func (h *History) Reset() {
	clear(h.records)
	if h.Limit <= 0 {
		h.records = h.records[:0]
	}
	h.start = 0
	h.count = 0
}
