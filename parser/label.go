package parser

import (
	"errors"
	"iter"
)

// Segment is a section of the program image.
type Segment int

//go:generate go tool stringer -linecomment -type=Segment
const (
	SEGMENT_TEXT = Segment(0) // .text
	SEGMENT_DATA = Segment(1) // .data
)

// Label is a defined label.
type Label struct {
	Name    string
	Segment Segment
	Index   int // Instruction index in .text, byte offset in .data.
	Pos     Pos
}

// Address returns the label address for the given segment bases.
func (label *Label) Address(textBase, dataBase uint32) uint32 {
	if label.Segment == SEGMENT_TEXT {
		return textBase + 4*uint32(label.Index)
	}
	return dataBase + uint32(label.Index)
}

// Reference is one use of a label. Operands refer to it by index.
type Reference struct {
	Name string
	Pos  Pos
}

// Table is the label arena: definitions, and every reference made by
// operands or data fixups.
type Table struct {
	Labels []Label
	Refs   []Reference

	index map[string]int
}

// Define adds a label definition.
func (table *Table) Define(name string, segment Segment, index int, pos Pos) (err error) {
	if table.index == nil {
		table.index = make(map[string]int)
	}

	if _, ok := table.index[name]; ok {
		err = &ErrLabel{Name: name, Err: ErrLabelDuplicate}
		return
	}

	table.index[name] = len(table.Labels)
	table.Labels = append(table.Labels, Label{Name: name, Segment: segment, Index: index, Pos: pos})
	return
}

// Reference records a use of name, returning its reference index.
// The label need not be defined yet.
func (table *Table) Reference(name string, pos Pos) (ref int) {
	ref = len(table.Refs)
	table.Refs = append(table.Refs, Reference{Name: name, Pos: pos})
	return
}

// Truncate discards every reference from index ref onwards.
func (table *Table) Truncate(ref int) {
	table.Refs = table.Refs[:ref]
}

// Lookup finds a label definition by name.
func (table *Table) Lookup(name string) (label *Label, ok bool) {
	n, ok := table.index[name]
	if ok {
		label = &table.Labels[n]
	}
	return
}

// Undefined iterates over every reference without a definition.
func (table *Table) Undefined() iter.Seq[Reference] {
	return func(yield func(Reference) bool) {
		for _, ref := range table.Refs {
			if _, ok := table.index[ref.Name]; ok {
				continue
			}
			if !yield(ref) {
				return
			}
		}
	}
}

// Resolve computes the address of every reference, by reference index.
// Undefined references resolve to zero and are reported.
func (table *Table) Resolve(textBase, dataBase uint32) (addresses []uint32, err error) {
	var errs []error

	addresses = make([]uint32, len(table.Refs))
	for n, ref := range table.Refs {
		label, ok := table.Lookup(ref.Name)
		if !ok {
			errs = append(errs, &ErrParse{Pos: ref.Pos, Err: &ErrLabel{Name: ref.Name, Err: ErrLabelUndefined}})
			continue
		}
		addresses[n] = label.Address(textBase, dataBase)
	}

	err = errors.Join(errs...)
	return
}
