package isa

// Format is one of the six base instruction encodings.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_R = Format(0) // R
	FORMAT_I = Format(1) // I
	FORMAT_S = Format(2) // S
	FORMAT_B = Format(3) // B
	FORMAT_U = Format(4) // U
	FORMAT_J = Format(5) // J
)

// Fields are the unpacked contents of an instruction word. Imm holds the
// sign-extended immediate, except for FORMAT_U where it is the raw
// 20-bit upper immediate.
type Fields struct {
	Opcode uint32
	Funct3 uint32
	Funct7 uint32
	Rd     uint32
	Rs1    uint32
	Rs2    uint32
	Imm    int32
}

type fieldSource int

const (
	SRC_OPCODE = fieldSource(iota)
	SRC_RD
	SRC_FUNCT3
	SRC_RS1
	SRC_RS2
	SRC_FUNCT7
	SRC_IMM
)

// bitSlice moves Width bits starting at bit From of a field into bit To
// of the instruction word.
type bitSlice struct {
	Source fieldSource
	From   uint
	Width  uint
	To     uint
}

// layout is the field placement table, LSB first, for every format.
var layout = [...][]bitSlice{
	FORMAT_R: {
		{SRC_OPCODE, 0, 7, 0},
		{SRC_RD, 0, 5, 7},
		{SRC_FUNCT3, 0, 3, 12},
		{SRC_RS1, 0, 5, 15},
		{SRC_RS2, 0, 5, 20},
		{SRC_FUNCT7, 0, 7, 25},
	},
	FORMAT_I: {
		{SRC_OPCODE, 0, 7, 0},
		{SRC_RD, 0, 5, 7},
		{SRC_FUNCT3, 0, 3, 12},
		{SRC_RS1, 0, 5, 15},
		{SRC_IMM, 0, 12, 20},
	},
	FORMAT_S: {
		{SRC_OPCODE, 0, 7, 0},
		{SRC_IMM, 0, 5, 7},
		{SRC_FUNCT3, 0, 3, 12},
		{SRC_RS1, 0, 5, 15},
		{SRC_RS2, 0, 5, 20},
		{SRC_IMM, 5, 7, 25},
	},
	FORMAT_B: {
		{SRC_OPCODE, 0, 7, 0},
		{SRC_IMM, 11, 1, 7},
		{SRC_IMM, 1, 4, 8},
		{SRC_FUNCT3, 0, 3, 12},
		{SRC_RS1, 0, 5, 15},
		{SRC_RS2, 0, 5, 20},
		{SRC_IMM, 5, 6, 25},
		{SRC_IMM, 12, 1, 31},
	},
	FORMAT_U: {
		{SRC_OPCODE, 0, 7, 0},
		{SRC_RD, 0, 5, 7},
		{SRC_IMM, 0, 20, 12},
	},
	FORMAT_J: {
		{SRC_OPCODE, 0, 7, 0},
		{SRC_RD, 0, 5, 7},
		{SRC_IMM, 12, 8, 12},
		{SRC_IMM, 11, 1, 20},
		{SRC_IMM, 1, 10, 21},
		{SRC_IMM, 20, 1, 31},
	},
}

// immLimit is the accepted immediate range, and required alignment, of a format.
type immLimit struct {
	Min   int64
	Max   int64
	Align int64
	Sign  uint // bit index of the sign bit after decode, 0 for unsigned
}

var limits = [...]immLimit{
	FORMAT_R: {0, 0, 1, 0},
	FORMAT_I: {-(1 << 11), (1 << 11) - 1, 1, 11},
	FORMAT_S: {-(1 << 11), (1 << 11) - 1, 1, 11},
	FORMAT_B: {-(1 << 12), (1 << 12) - 1, 2, 12},
	FORMAT_U: {0, (1 << 20) - 1, 1, 0},
	FORMAT_J: {-(1 << 20), (1 << 20) - 1, 2, 20},
}

// fieldMax is the largest value each non-immediate field can hold.
var fieldMax = [...]uint32{
	SRC_OPCODE: 0x7f,
	SRC_RD:     0x1f,
	SRC_FUNCT3: 0x7,
	SRC_RS1:    0x1f,
	SRC_RS2:    0x1f,
	SRC_FUNCT7: 0x7f,
}

// Valid is true for the six defined formats.
func (format Format) Valid() bool {
	return format >= FORMAT_R && format <= FORMAT_J
}

// CheckImmediate verifies that value fits the immediate field of the format.
// The check happens on the untruncated value, so an oversized offset is
// reported rather than silently wrapped.
func (format Format) CheckImmediate(value int64) (err error) {
	if !format.Valid() {
		err = ErrFormatInvalid
		return
	}

	limit := limits[format]
	if value < limit.Min || value > limit.Max {
		err = &ErrRange{Format: format, Value: value, Min: limit.Min, Max: limit.Max}
		return
	}

	if value%limit.Align != 0 {
		err = ErrImmediateAlign
		return
	}

	return
}

func (fields *Fields) source(src fieldSource) uint32 {
	switch src {
	case SRC_OPCODE:
		return fields.Opcode
	case SRC_RD:
		return fields.Rd
	case SRC_FUNCT3:
		return fields.Funct3
	case SRC_RS1:
		return fields.Rs1
	case SRC_RS2:
		return fields.Rs2
	case SRC_FUNCT7:
		return fields.Funct7
	default:
		return uint32(fields.Imm)
	}
}

func (fields *Fields) merge(src fieldSource, value uint32) {
	switch src {
	case SRC_OPCODE:
		fields.Opcode |= value
	case SRC_RD:
		fields.Rd |= value
	case SRC_FUNCT3:
		fields.Funct3 |= value
	case SRC_RS1:
		fields.Rs1 |= value
	case SRC_RS2:
		fields.Rs2 |= value
	case SRC_FUNCT7:
		fields.Funct7 |= value
	default:
		fields.Imm |= int32(value)
	}
}

// Encode packs the fields into a 32-bit instruction word of the given format.
// Fields not used by the format are ignored.
func Encode(format Format, fields Fields) (word uint32, err error) {
	if !format.Valid() {
		err = ErrFormatInvalid
		return
	}

	usesImm := false
	for _, slice := range layout[format] {
		if slice.Source == SRC_IMM {
			usesImm = true
			continue
		}
		if fields.source(slice.Source) > fieldMax[slice.Source] {
			err = ErrFieldRange
			return
		}
	}

	if usesImm {
		err = format.CheckImmediate(int64(fields.Imm))
		if err != nil {
			return
		}
	}

	for _, slice := range layout[format] {
		value := (fields.source(slice.Source) >> slice.From) & (1<<slice.Width - 1)
		word |= value << slice.To
	}

	return
}

// DecodeFields unpacks an instruction word according to its format.
func DecodeFields(format Format, word uint32) (fields Fields) {
	if !format.Valid() {
		return
	}

	for _, slice := range layout[format] {
		value := (word >> slice.To) & (1<<slice.Width - 1)
		fields.merge(slice.Source, value<<slice.From)
	}

	sign := limits[format].Sign
	if sign != 0 && fields.Imm&(1<<sign) != 0 {
		fields.Imm |= ^int32(0) << sign
	}

	return
}
