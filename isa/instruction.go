package isa

import (
	"fmt"
	"strings"
)

// Handler selects how a resolved label address becomes an immediate.
type Handler int

//go:generate go tool stringer -linecomment -type=Handler
const (
	HANDLER_NONE                = Handler(0) // none
	HANDLER_LOW                 = Handler(1) // lo
	HANDLER_HIGH                = Handler(2) // hi
	HANDLER_DELTA_HIGH          = Handler(3) // pcrel_hi
	HANDLER_DELTA_MINUS_ONE_LOW = Handler(4) // pcrel_lo
)

func signExtend12(value uint32) int64 {
	return int64(int32(value<<20) >> 20)
}

// Resolve computes the immediate for a label at addr, used by the
// instruction at pc of the given format. HANDLER_NONE yields the
// pc-relative offset for B and J formats, and the absolute address
// otherwise.
func (handler Handler) Resolve(format Format, addr, pc uint32) (value int64) {
	switch handler {
	case HANDLER_LOW:
		value = signExtend12(addr & 0xfff)
	case HANDLER_HIGH:
		value = int64(((addr + 0x800) >> 12) & 0xfffff)
	case HANDLER_DELTA_HIGH:
		value = int64(((addr - pc + 0x800) >> 12) & 0xfffff)
	case HANDLER_DELTA_MINUS_ONE_LOW:
		// The matching HANDLER_DELTA_HIGH sits one instruction earlier.
		value = signExtend12((addr - (pc - 4)) & 0xfff)
	default:
		switch format {
		case FORMAT_B, FORMAT_J:
			value = int64(addr) - int64(pc)
		default:
			value = int64(addr)
		}
	}
	return
}

// OperandKind is the variant held by an Operand.
type OperandKind int

const (
	OPERAND_REGISTER  = OperandKind(iota) // general purpose register
	OPERAND_FREGISTER                     // floating point register
	OPERAND_IMMEDIATE                     // integer immediate
	OPERAND_LABEL                         // reference into the label arena
)

// Operand is one argument of an IR instruction.
type Operand struct {
	Kind    OperandKind
	Reg     Register
	Imm     int32
	Ref     int
	Handler Handler
}

// Reg is a general purpose register operand.
func Reg(reg Register) Operand {
	return Operand{Kind: OPERAND_REGISTER, Reg: reg}
}

// FReg is a floating point register operand.
func FReg(reg Register) Operand {
	return Operand{Kind: OPERAND_FREGISTER, Reg: reg}
}

// Imm is an immediate operand.
func Imm(value int32) Operand {
	return Operand{Kind: OPERAND_IMMEDIATE, Imm: value}
}

// LabelRef is a label reference operand, resolved through handler.
func LabelRef(ref int, handler Handler) Operand {
	return Operand{Kind: OPERAND_LABEL, Ref: ref, Handler: handler}
}

func (op Operand) String() string {
	switch op.Kind {
	case OPERAND_REGISTER:
		return op.Reg.String()
	case OPERAND_FREGISTER:
		return op.Reg.FString()
	case OPERAND_IMMEDIATE:
		return fmt.Sprintf("%d", op.Imm)
	case OPERAND_LABEL:
		if op.Handler == HANDLER_NONE {
			return fmt.Sprintf("<%d>", op.Ref)
		}
		return fmt.Sprintf("%%%v(<%d>)", op.Handler, op.Ref)
	}
	return "?"
}

// Instruction is one machine instruction in intermediate form. Every
// Instruction encodes to exactly one 32-bit word.
type Instruction struct {
	Line     int
	Op       Operator
	Operands []Operand
}

// Fields unpacks the instruction into encoding fields. All label
// operands must have been replaced by immediates.
func (inst *Instruction) Fields() (fields Fields, err error) {
	if !inst.Op.Valid() {
		err = ErrOperatorInvalid
		return
	}

	info := inst.Op.Info()
	slots := info.Shape.Slots()
	if len(inst.Operands) != len(slots) {
		err = ErrOperandCount
		return
	}

	fields.Opcode = info.Opcode
	fields.Funct3 = info.Funct3
	fields.Funct7 = info.Funct7
	if info.Rm {
		fields.Funct3 = ROUNDING_DYNAMIC
	}
	if info.FixedRs2 {
		fields.Rs2 = info.Rs2
	}
	if info.Shape == SHAPE_NONE {
		fields.Imm = info.Imm
	}

	for n, slot := range slots {
		operand := inst.Operands[n]

		var value uint32
		var imm int32
		switch slot.Class {
		case CLASS_X, CLASS_F:
			want := OPERAND_REGISTER
			if slot.Class == CLASS_F {
				want = OPERAND_FREGISTER
			}
			if operand.Kind != want {
				err = ErrOperandKind
				return
			}
			if !operand.Reg.Valid() {
				err = ErrRegisterInvalid
				return
			}
			value = uint32(operand.Reg)
		default:
			if operand.Kind == OPERAND_LABEL {
				err = ErrOperandUnresolved
				return
			}
			if operand.Kind != OPERAND_IMMEDIATE {
				err = ErrOperandKind
				return
			}
			imm = operand.Imm
			switch {
			case slot.Class == CLASS_CSR:
				if imm < 0 || imm > 0xfff {
					err = &ErrRange{Format: info.Format, Value: int64(imm), Min: 0, Max: 0xfff}
					return
				}
				imm = int32(uint32(imm)<<20) >> 20
			case slot.Class == CLASS_UIMM:
				if imm < 0 || imm > 0x1f {
					err = &ErrRange{Format: info.Format, Value: int64(imm), Min: 0, Max: 0x1f}
					return
				}
				value = uint32(imm)
			case info.Shift:
				if imm < 0 || imm > 0x1f {
					err = &ErrRange{Format: info.Format, Value: int64(imm), Min: 0, Max: 0x1f}
					return
				}
				imm |= int32(info.Funct7 << 5)
			}
		}

		switch slot.Field {
		case FIELD_RD:
			fields.Rd = value
		case FIELD_RS1:
			fields.Rs1 = value
		case FIELD_RS2:
			fields.Rs2 = value
		case FIELD_RS3:
			fields.Funct7 = value<<2 | fields.Funct7&0b11
		case FIELD_IMM:
			fields.Imm = imm
		}
	}

	return
}

// Encode packs the instruction into its 32-bit machine word.
func (inst *Instruction) Encode() (word uint32, err error) {
	fields, err := inst.Fields()
	if err != nil {
		return
	}

	word, err = Encode(inst.Op.Format(), fields)
	return
}

func (info *Info) matches(fields *Fields) bool {
	if info.Format == FORMAT_U || info.Format == FORMAT_J {
		return true
	}

	if !info.Rm && fields.Funct3 != info.Funct3 {
		return false
	}

	if info.Format == FORMAT_R {
		if info.Shape == SHAPE_FFFF {
			if fields.Funct7&0b11 != 0 {
				return false
			}
		} else if fields.Funct7 != info.Funct7 {
			return false
		}
	}

	if info.Shift && (uint32(fields.Imm)>>5)&0x7f != info.Funct7 {
		return false
	}

	if info.FixedRs2 && fields.Rs2 != info.Rs2 {
		return false
	}

	if info.FixedImm && fields.Imm != info.Imm {
		return false
	}

	return true
}

// Decode converts a machine word back into an instruction. The Line of
// the result is zero.
func Decode(word uint32) (inst Instruction, err error) {
	for _, op := range byOpcode[word&0x7f] {
		info := &infos[op]
		fields := DecodeFields(info.Format, word)
		if !info.matches(&fields) {
			continue
		}

		inst.Op = op
		for _, slot := range info.Shape.Slots() {
			var value uint32
			switch slot.Field {
			case FIELD_RD:
				value = fields.Rd
			case FIELD_RS1:
				value = fields.Rs1
			case FIELD_RS2:
				value = fields.Rs2
			case FIELD_RS3:
				value = fields.Funct7 >> 2
			}

			var operand Operand
			switch slot.Class {
			case CLASS_X:
				operand = Reg(Register(value))
			case CLASS_F:
				operand = FReg(Register(value))
			case CLASS_UIMM:
				operand = Imm(int32(value))
			case CLASS_CSR:
				operand = Imm(int32(uint32(fields.Imm) & 0xfff))
			default:
				if info.Shift {
					operand = Imm(fields.Imm & 0x1f)
				} else {
					operand = Imm(fields.Imm)
				}
			}
			inst.Operands = append(inst.Operands, operand)
		}
		return
	}

	err = ErrWord(word)
	return
}

// String renders the instruction as assembly, for example
// "addi a0, a0, 0" or "lw a0, 4(sp)".
func (inst Instruction) String() string {
	name := inst.Op.String()
	if len(inst.Operands) == 0 {
		return name
	}

	args := make([]string, len(inst.Operands))
	for n, operand := range inst.Operands {
		args[n] = operand.String()
	}

	if inst.Op.Info().Shape.Offset() && len(args) == 3 {
		return fmt.Sprintf("%s %s, %s(%s)", name, args[0], args[2], args[1])
	}

	return name + " " + strings.Join(args, ", ")
}
