package isa

import (
	"fmt"
	"strings"
)

// Extension is an instruction set extension.
type Extension int

const (
	EXT_I = Extension(0) // RV32I
	EXT_F = Extension(1) // RV32F
)

// Extensions lists every supported extension, base set first.
var Extensions = []Extension{EXT_I, EXT_F}

func (ext Extension) String() string {
	switch ext {
	case EXT_I:
		return "RV32I"
	case EXT_F:
		return "RV32F"
	}
	return fmt.Sprintf("Extension(%d)", int(ext))
}

// Operator is a machine instruction. Every operator encodes to exactly
// one 32-bit word.
type Operator int

const (
	OP_INVALID = Operator(iota)

	// RV32I
	OP_LUI
	OP_AUIPC
	OP_JAL
	OP_JALR
	OP_BEQ
	OP_BNE
	OP_BLT
	OP_BGE
	OP_BLTU
	OP_BGEU
	OP_LB
	OP_LH
	OP_LW
	OP_LBU
	OP_LHU
	OP_SB
	OP_SH
	OP_SW
	OP_ADDI
	OP_SLTI
	OP_SLTIU
	OP_XORI
	OP_ORI
	OP_ANDI
	OP_SLLI
	OP_SRLI
	OP_SRAI
	OP_ADD
	OP_SUB
	OP_SLL
	OP_SLT
	OP_SLTU
	OP_XOR
	OP_SRL
	OP_SRA
	OP_OR
	OP_AND
	OP_FENCE
	OP_ECALL
	OP_EBREAK
	OP_CSRRW
	OP_CSRRS
	OP_CSRRC
	OP_CSRRWI
	OP_CSRRSI
	OP_CSRRCI

	// RV32F
	OP_FLW
	OP_FSW
	OP_FMADD_S
	OP_FMSUB_S
	OP_FNMSUB_S
	OP_FNMADD_S
	OP_FADD_S
	OP_FSUB_S
	OP_FMUL_S
	OP_FDIV_S
	OP_FSQRT_S
	OP_FSGNJ_S
	OP_FSGNJN_S
	OP_FSGNJX_S
	OP_FMIN_S
	OP_FMAX_S
	OP_FCVT_W_S
	OP_FCVT_WU_S
	OP_FMV_X_W
	OP_FEQ_S
	OP_FLT_S
	OP_FLE_S
	OP_FCLASS_S
	OP_FCVT_S_W
	OP_FCVT_S_WU
	OP_FMV_W_X

	OP_COUNT
)

// Field is an instruction word field an operand is placed into.
type Field int

const (
	FIELD_RD = Field(iota)
	FIELD_RS1
	FIELD_RS2
	FIELD_RS3
	FIELD_IMM
)

// Class is the kind of value an operand slot accepts.
type Class int

const (
	CLASS_X    = Class(iota) // general purpose register
	CLASS_F                  // floating point register
	CLASS_IMM                // signed immediate
	CLASS_CSR                // unsigned 12-bit CSR number, in the immediate
	CLASS_UIMM               // unsigned 5-bit immediate, in the rs1 field
)

// Slot places one operand of an instruction.
type Slot struct {
	Field Field
	Class Class
}

// Shape is the operand list layout shared by a group of operators.
type Shape int

const (
	SHAPE_NONE   = Shape(iota) // ecall
	SHAPE_XXX                  // add rd, rs1, rs2
	SHAPE_XXI                  // addi rd, rs1, imm
	SHAPE_LOAD                 // lw rd, imm(rs1)
	SHAPE_STORE                // sw rs2, imm(rs1)
	SHAPE_BRANCH               // beq rs1, rs2, imm
	SHAPE_XI                   // lui rd, imm
	SHAPE_CSR                  // csrrw rd, csr, rs1
	SHAPE_CSRI                 // csrrwi rd, csr, uimm
	SHAPE_FFF                  // fadd.s rd, rs1, rs2
	SHAPE_FF                   // fsqrt.s rd, rs1
	SHAPE_FFFF                 // fmadd.s rd, rs1, rs2, rs3
	SHAPE_XFF                  // feq.s rd, rs1, rs2
	SHAPE_XF                   // fcvt.w.s rd, rs1
	SHAPE_FX                   // fcvt.s.w rd, rs1
	SHAPE_FLOAD                // flw rd, imm(rs1)
	SHAPE_FSTORE               // fsw rs2, imm(rs1)
)

var shapes = [...][]Slot{
	SHAPE_NONE:   {},
	SHAPE_XXX:    {{FIELD_RD, CLASS_X}, {FIELD_RS1, CLASS_X}, {FIELD_RS2, CLASS_X}},
	SHAPE_XXI:    {{FIELD_RD, CLASS_X}, {FIELD_RS1, CLASS_X}, {FIELD_IMM, CLASS_IMM}},
	SHAPE_LOAD:   {{FIELD_RD, CLASS_X}, {FIELD_RS1, CLASS_X}, {FIELD_IMM, CLASS_IMM}},
	SHAPE_STORE:  {{FIELD_RS2, CLASS_X}, {FIELD_RS1, CLASS_X}, {FIELD_IMM, CLASS_IMM}},
	SHAPE_BRANCH: {{FIELD_RS1, CLASS_X}, {FIELD_RS2, CLASS_X}, {FIELD_IMM, CLASS_IMM}},
	SHAPE_XI:     {{FIELD_RD, CLASS_X}, {FIELD_IMM, CLASS_IMM}},
	SHAPE_CSR:    {{FIELD_RD, CLASS_X}, {FIELD_IMM, CLASS_CSR}, {FIELD_RS1, CLASS_X}},
	SHAPE_CSRI:   {{FIELD_RD, CLASS_X}, {FIELD_IMM, CLASS_CSR}, {FIELD_RS1, CLASS_UIMM}},
	SHAPE_FFF:    {{FIELD_RD, CLASS_F}, {FIELD_RS1, CLASS_F}, {FIELD_RS2, CLASS_F}},
	SHAPE_FF:     {{FIELD_RD, CLASS_F}, {FIELD_RS1, CLASS_F}},
	SHAPE_FFFF:   {{FIELD_RD, CLASS_F}, {FIELD_RS1, CLASS_F}, {FIELD_RS2, CLASS_F}, {FIELD_RS3, CLASS_F}},
	SHAPE_XFF:    {{FIELD_RD, CLASS_X}, {FIELD_RS1, CLASS_F}, {FIELD_RS2, CLASS_F}},
	SHAPE_XF:     {{FIELD_RD, CLASS_X}, {FIELD_RS1, CLASS_F}},
	SHAPE_FX:     {{FIELD_RD, CLASS_F}, {FIELD_RS1, CLASS_X}},
	SHAPE_FLOAD:  {{FIELD_RD, CLASS_F}, {FIELD_RS1, CLASS_X}, {FIELD_IMM, CLASS_IMM}},
	SHAPE_FSTORE: {{FIELD_RS2, CLASS_F}, {FIELD_RS1, CLASS_X}, {FIELD_IMM, CLASS_IMM}},
}

// Slots returns the operand layout of the shape.
func (shape Shape) Slots() []Slot {
	return shapes[shape]
}

// Offset is true for shapes displayed as "rd, imm(rs1)".
func (shape Shape) Offset() bool {
	switch shape {
	case SHAPE_LOAD, SHAPE_STORE, SHAPE_FLOAD, SHAPE_FSTORE:
		return true
	}
	return false
}

// ROUNDING_DYNAMIC is the rm encoding selecting the fcsr rounding mode.
const ROUNDING_DYNAMIC = 0b111

// Info is the static encoding description of an operator.
type Info struct {
	Name   string
	Ext    Extension
	Format Format
	Shape  Shape
	Opcode uint32
	Funct3 uint32
	Funct7 uint32

	Rm       bool   // funct3 holds the rounding mode
	Shift    bool   // imm[11:5] holds funct7, imm[4:0] the shift amount
	FixedRs2 bool   // rs2 selects the operation
	Rs2      uint32 // rs2 value when FixedRs2
	FixedImm bool   // the immediate selects the operation
	Imm      int32  // immediate for operand-less forms
}

var infos = [OP_COUNT]Info{
	OP_LUI:   {Name: "lui", Format: FORMAT_U, Shape: SHAPE_XI, Opcode: 0b0110111},
	OP_AUIPC: {Name: "auipc", Format: FORMAT_U, Shape: SHAPE_XI, Opcode: 0b0010111},
	OP_JAL:   {Name: "jal", Format: FORMAT_J, Shape: SHAPE_XI, Opcode: 0b1101111},
	OP_JALR:  {Name: "jalr", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b1100111, Funct3: 0b000},

	OP_BEQ:  {Name: "beq", Format: FORMAT_B, Shape: SHAPE_BRANCH, Opcode: 0b1100011, Funct3: 0b000},
	OP_BNE:  {Name: "bne", Format: FORMAT_B, Shape: SHAPE_BRANCH, Opcode: 0b1100011, Funct3: 0b001},
	OP_BLT:  {Name: "blt", Format: FORMAT_B, Shape: SHAPE_BRANCH, Opcode: 0b1100011, Funct3: 0b100},
	OP_BGE:  {Name: "bge", Format: FORMAT_B, Shape: SHAPE_BRANCH, Opcode: 0b1100011, Funct3: 0b101},
	OP_BLTU: {Name: "bltu", Format: FORMAT_B, Shape: SHAPE_BRANCH, Opcode: 0b1100011, Funct3: 0b110},
	OP_BGEU: {Name: "bgeu", Format: FORMAT_B, Shape: SHAPE_BRANCH, Opcode: 0b1100011, Funct3: 0b111},

	OP_LB:  {Name: "lb", Format: FORMAT_I, Shape: SHAPE_LOAD, Opcode: 0b0000011, Funct3: 0b000},
	OP_LH:  {Name: "lh", Format: FORMAT_I, Shape: SHAPE_LOAD, Opcode: 0b0000011, Funct3: 0b001},
	OP_LW:  {Name: "lw", Format: FORMAT_I, Shape: SHAPE_LOAD, Opcode: 0b0000011, Funct3: 0b010},
	OP_LBU: {Name: "lbu", Format: FORMAT_I, Shape: SHAPE_LOAD, Opcode: 0b0000011, Funct3: 0b100},
	OP_LHU: {Name: "lhu", Format: FORMAT_I, Shape: SHAPE_LOAD, Opcode: 0b0000011, Funct3: 0b101},

	OP_SB: {Name: "sb", Format: FORMAT_S, Shape: SHAPE_STORE, Opcode: 0b0100011, Funct3: 0b000},
	OP_SH: {Name: "sh", Format: FORMAT_S, Shape: SHAPE_STORE, Opcode: 0b0100011, Funct3: 0b001},
	OP_SW: {Name: "sw", Format: FORMAT_S, Shape: SHAPE_STORE, Opcode: 0b0100011, Funct3: 0b010},

	OP_ADDI:  {Name: "addi", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b0010011, Funct3: 0b000},
	OP_SLTI:  {Name: "slti", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b0010011, Funct3: 0b010},
	OP_SLTIU: {Name: "sltiu", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b0010011, Funct3: 0b011},
	OP_XORI:  {Name: "xori", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b0010011, Funct3: 0b100},
	OP_ORI:   {Name: "ori", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b0010011, Funct3: 0b110},
	OP_ANDI:  {Name: "andi", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b0010011, Funct3: 0b111},
	OP_SLLI:  {Name: "slli", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b0010011, Funct3: 0b001, Shift: true},
	OP_SRLI:  {Name: "srli", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b0010011, Funct3: 0b101, Shift: true},
	OP_SRAI:  {Name: "srai", Format: FORMAT_I, Shape: SHAPE_XXI, Opcode: 0b0010011, Funct3: 0b101, Funct7: 0b0100000, Shift: true},

	OP_ADD:  {Name: "add", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b000},
	OP_SUB:  {Name: "sub", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b000, Funct7: 0b0100000},
	OP_SLL:  {Name: "sll", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b001},
	OP_SLT:  {Name: "slt", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b010},
	OP_SLTU: {Name: "sltu", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b011},
	OP_XOR:  {Name: "xor", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b100},
	OP_SRL:  {Name: "srl", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b101},
	OP_SRA:  {Name: "sra", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b101, Funct7: 0b0100000},
	OP_OR:   {Name: "or", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b110},
	OP_AND:  {Name: "and", Format: FORMAT_R, Shape: SHAPE_XXX, Opcode: 0b0110011, Funct3: 0b111},

	OP_FENCE:  {Name: "fence", Format: FORMAT_I, Shape: SHAPE_NONE, Opcode: 0b0001111, Funct3: 0b000, Imm: 0x0ff},
	OP_ECALL:  {Name: "ecall", Format: FORMAT_I, Shape: SHAPE_NONE, Opcode: 0b1110011, Funct3: 0b000, FixedImm: true, Imm: 0},
	OP_EBREAK: {Name: "ebreak", Format: FORMAT_I, Shape: SHAPE_NONE, Opcode: 0b1110011, Funct3: 0b000, FixedImm: true, Imm: 1},

	OP_CSRRW:  {Name: "csrrw", Format: FORMAT_I, Shape: SHAPE_CSR, Opcode: 0b1110011, Funct3: 0b001},
	OP_CSRRS:  {Name: "csrrs", Format: FORMAT_I, Shape: SHAPE_CSR, Opcode: 0b1110011, Funct3: 0b010},
	OP_CSRRC:  {Name: "csrrc", Format: FORMAT_I, Shape: SHAPE_CSR, Opcode: 0b1110011, Funct3: 0b011},
	OP_CSRRWI: {Name: "csrrwi", Format: FORMAT_I, Shape: SHAPE_CSRI, Opcode: 0b1110011, Funct3: 0b101},
	OP_CSRRSI: {Name: "csrrsi", Format: FORMAT_I, Shape: SHAPE_CSRI, Opcode: 0b1110011, Funct3: 0b110},
	OP_CSRRCI: {Name: "csrrci", Format: FORMAT_I, Shape: SHAPE_CSRI, Opcode: 0b1110011, Funct3: 0b111},

	OP_FLW: {Name: "flw", Ext: EXT_F, Format: FORMAT_I, Shape: SHAPE_FLOAD, Opcode: 0b0000111, Funct3: 0b010},
	OP_FSW: {Name: "fsw", Ext: EXT_F, Format: FORMAT_S, Shape: SHAPE_FSTORE, Opcode: 0b0100111, Funct3: 0b010},

	OP_FMADD_S:  {Name: "fmadd.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFFF, Opcode: 0b1000011, Rm: true},
	OP_FMSUB_S:  {Name: "fmsub.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFFF, Opcode: 0b1000111, Rm: true},
	OP_FNMSUB_S: {Name: "fnmsub.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFFF, Opcode: 0b1001011, Rm: true},
	OP_FNMADD_S: {Name: "fnmadd.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFFF, Opcode: 0b1001111, Rm: true},

	OP_FADD_S:  {Name: "fadd.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFF, Opcode: 0b1010011, Funct7: 0b0000000, Rm: true},
	OP_FSUB_S:  {Name: "fsub.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFF, Opcode: 0b1010011, Funct7: 0b0000100, Rm: true},
	OP_FMUL_S:  {Name: "fmul.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFF, Opcode: 0b1010011, Funct7: 0b0001000, Rm: true},
	OP_FDIV_S:  {Name: "fdiv.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFF, Opcode: 0b1010011, Funct7: 0b0001100, Rm: true},
	OP_FSQRT_S: {Name: "fsqrt.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FF, Opcode: 0b1010011, Funct7: 0b0101100, Rm: true, FixedRs2: true, Rs2: 0},

	OP_FSGNJ_S:  {Name: "fsgnj.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFF, Opcode: 0b1010011, Funct7: 0b0010000, Funct3: 0b000},
	OP_FSGNJN_S: {Name: "fsgnjn.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFF, Opcode: 0b1010011, Funct7: 0b0010000, Funct3: 0b001},
	OP_FSGNJX_S: {Name: "fsgnjx.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFF, Opcode: 0b1010011, Funct7: 0b0010000, Funct3: 0b010},
	OP_FMIN_S:   {Name: "fmin.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFF, Opcode: 0b1010011, Funct7: 0b0010100, Funct3: 0b000},
	OP_FMAX_S:   {Name: "fmax.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FFF, Opcode: 0b1010011, Funct7: 0b0010100, Funct3: 0b001},

	OP_FCVT_W_S:  {Name: "fcvt.w.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_XF, Opcode: 0b1010011, Funct7: 0b1100000, Rm: true, FixedRs2: true, Rs2: 0},
	OP_FCVT_WU_S: {Name: "fcvt.wu.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_XF, Opcode: 0b1010011, Funct7: 0b1100000, Rm: true, FixedRs2: true, Rs2: 1},
	OP_FMV_X_W:   {Name: "fmv.x.w", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_XF, Opcode: 0b1010011, Funct7: 0b1110000, Funct3: 0b000, FixedRs2: true, Rs2: 0},
	OP_FEQ_S:     {Name: "feq.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_XFF, Opcode: 0b1010011, Funct7: 0b1010000, Funct3: 0b010},
	OP_FLT_S:     {Name: "flt.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_XFF, Opcode: 0b1010011, Funct7: 0b1010000, Funct3: 0b001},
	OP_FLE_S:     {Name: "fle.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_XFF, Opcode: 0b1010011, Funct7: 0b1010000, Funct3: 0b000},
	OP_FCLASS_S:  {Name: "fclass.s", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_XF, Opcode: 0b1010011, Funct7: 0b1110000, Funct3: 0b001, FixedRs2: true, Rs2: 0},
	OP_FCVT_S_W:  {Name: "fcvt.s.w", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FX, Opcode: 0b1010011, Funct7: 0b1101000, Rm: true, FixedRs2: true, Rs2: 0},
	OP_FCVT_S_WU: {Name: "fcvt.s.wu", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FX, Opcode: 0b1010011, Funct7: 0b1101000, Rm: true, FixedRs2: true, Rs2: 1},
	OP_FMV_W_X:   {Name: "fmv.w.x", Ext: EXT_F, Format: FORMAT_R, Shape: SHAPE_FX, Opcode: 0b1010011, Funct7: 0b1111000, Funct3: 0b000, FixedRs2: true, Rs2: 0},
}

// byName and byOpcode index the operator table.
var byName = map[string]Operator{}
var byOpcode = map[uint32][]Operator{}

func init() {
	for op := OP_INVALID + 1; op < OP_COUNT; op++ {
		info := &infos[op]
		byName[info.Name] = op
		byOpcode[info.Opcode] = append(byOpcode[info.Opcode], op)
	}
}

// Operators returns every valid operator in table order.
func Operators() (ops []Operator) {
	for op := OP_INVALID + 1; op < OP_COUNT; op++ {
		ops = append(ops, op)
	}
	return
}

// LookupOperator finds the operator with the mnemonic name.
func LookupOperator(name string) (op Operator, ok bool) {
	op, ok = byName[strings.ToLower(name)]
	return
}

// Valid is true for operators in the instruction table.
func (op Operator) Valid() bool {
	return op > OP_INVALID && op < OP_COUNT
}

// Info returns the encoding description of the operator.
func (op Operator) Info() *Info {
	if !op.Valid() {
		return &infos[OP_INVALID]
	}
	return &infos[op]
}

// Format returns the base instruction format of the operator.
func (op Operator) Format() Format {
	return op.Info().Format
}

// Extension returns the extension that defines the operator.
func (op Operator) Extension() Extension {
	return op.Info().Ext
}

func (op Operator) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return infos[op].Name
}
