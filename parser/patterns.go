package parser

import (
	"github.com/ezrec/rvasm/isa"
)

// mnemonic is an instruction name and its operand patterns, most
// specific first.
type mnemonic struct {
	Ext      isa.Extension
	Patterns []Pattern
}

// mnemonics holds every base and pseudo instruction by name.
var mnemonics = map[string]*mnemonic{}

const (
	hLow   = isa.HANDLER_LOW
	hHigh  = isa.HANDLER_HIGH
	hDelta = isa.HANDLER_DELTA_HIGH
	hPair  = isa.HANDLER_DELTA_MINUS_ONE_LOW
	hNone  = isa.HANDLER_NONE
)

// offsetPatterns are the addressing forms shared by loads and stores.
// Value 0 is the data register, the base register follows.
func offsetPatterns(o isa.Operator, data string) []Pattern {
	return []Pattern{
		pattern("rd, imm(rs1)", data+" , i12 ( x )", op(o, val(0), val(2), val(1))),
		pattern("rd, (rs1)", data+" , ( x )", op(o, val(0), val(1), imm(0))),
		pattern("rd, %lo(label)(rs1)", data+" , %lo ( l ) ( x )", op(o, val(0), val(2), label(1, hLow))),
	}
}

// basePatterns derives the operand patterns of a machine instruction
// from its shape.
func basePatterns(o isa.Operator) (pats []Pattern) {
	info := o.Info()

	switch info.Shape {
	case isa.SHAPE_NONE:
		pats = append(pats, pattern("", "", op(o)))
	case isa.SHAPE_XXX:
		pats = append(pats, pattern("rd, rs1, rs2", "x , x , x", op(o, val(0), val(1), val(2))))
	case isa.SHAPE_XXI:
		if info.Shift {
			pats = append(pats, pattern("rd, rs1, shamt", "x , x , u5", op(o, val(0), val(1), val(2))))
			break
		}
		pats = append(pats,
			pattern("rd, rs1, imm", "x , x , i12", op(o, val(0), val(1), val(2))),
			pattern("rd, rs1, %lo(label)", "x , x , %lo ( l )", op(o, val(0), val(1), label(2, hLow))),
		)
	case isa.SHAPE_LOAD:
		pats = append(pats, offsetPatterns(o, "x")...)
		pats = append(pats, pattern("rd, label", "x , l",
			op(isa.OP_AUIPC, val(0), label(1, hDelta)),
			op(o, val(0), val(0), label(1, hPair))))
	case isa.SHAPE_STORE:
		pats = append(pats, offsetPatterns(o, "x")...)
		pats = append(pats, pattern("rs2, label, rt", "x , l , x",
			op(isa.OP_AUIPC, val(2), label(1, hDelta)),
			op(o, val(0), val(2), label(1, hPair))))
	case isa.SHAPE_FLOAD, isa.SHAPE_FSTORE:
		pats = append(pats, offsetPatterns(o, "f")...)
		pats = append(pats, pattern("rd, label, rt", "f , l , x",
			op(isa.OP_AUIPC, val(2), label(1, hDelta)),
			op(o, val(0), val(2), label(1, hPair))))
	case isa.SHAPE_BRANCH:
		pats = append(pats,
			pattern("rs1, rs2, label", "x , x , l", op(o, val(0), val(1), label(2, hNone))),
			pattern("rs1, rs2, offset", "x , x , i13", op(o, val(0), val(1), val(2))),
		)
	case isa.SHAPE_XI:
		if info.Format == isa.FORMAT_J {
			pats = append(pats,
				pattern("rd, label", "x , l", op(o, val(0), label(1, hNone))),
				pattern("rd, offset", "x , i21", op(o, val(0), val(1))),
				pattern("label", "l", op(o, reg(isa.REG_RA), label(0, hNone))),
				pattern("offset", "i21", op(o, reg(isa.REG_RA), val(0))),
			)
			break
		}
		pats = append(pats, pattern("rd, imm", "x , u20", op(o, val(0), val(1))))
		if o == isa.OP_LUI {
			pats = append(pats, pattern("rd, %hi(label)", "x , %hi ( l )", op(o, val(0), label(1, hHigh))))
		}
	case isa.SHAPE_CSR:
		pats = append(pats, pattern("rd, csr, rs1", "x , csr , x", op(o, val(0), val(1), val(2))))
	case isa.SHAPE_CSRI:
		pats = append(pats, pattern("rd, csr, uimm", "x , csr , u5", op(o, val(0), val(1), val(2))))
	case isa.SHAPE_FFF:
		pats = append(pats, pattern("rd, rs1, rs2", "f , f , f", op(o, val(0), val(1), val(2))))
	case isa.SHAPE_FF:
		pats = append(pats, pattern("rd, rs1", "f , f", op(o, val(0), val(1))))
	case isa.SHAPE_FFFF:
		pats = append(pats, pattern("rd, rs1, rs2, rs3", "f , f , f , f", op(o, val(0), val(1), val(2), val(3))))
	case isa.SHAPE_XFF:
		pats = append(pats, pattern("rd, rs1, rs2", "x , f , f", op(o, val(0), val(1), val(2))))
	case isa.SHAPE_XF:
		pats = append(pats, pattern("rd, rs1", "x , f", op(o, val(0), val(1))))
	case isa.SHAPE_FX:
		pats = append(pats, pattern("rd, rs1", "f , x", op(o, val(0), val(1))))
	}

	if o == isa.OP_JALR {
		pats = append(pats,
			pattern("rd, imm(rs1)", "x , i12 ( x )", op(o, val(0), val(2), val(1))),
			pattern("rd, rs1", "x , x", op(o, val(0), val(1), imm(0))),
			pattern("rs1", "x", op(o, reg(isa.REG_RA), val(0), imm(0))),
		)
	}

	return
}

func branchZero(o isa.Operator, zeroFirst bool) []Pattern {
	if zeroFirst {
		return []Pattern{
			pattern("rs, label", "x , l", op(o, reg(isa.REG_ZERO), val(0), label(1, hNone))),
			pattern("rs, offset", "x , i13", op(o, reg(isa.REG_ZERO), val(0), val(1))),
		}
	}
	return []Pattern{
		pattern("rs, label", "x , l", op(o, val(0), reg(isa.REG_ZERO), label(1, hNone))),
		pattern("rs, offset", "x , i13", op(o, val(0), reg(isa.REG_ZERO), val(1))),
	}
}

func branchSwap(o isa.Operator) []Pattern {
	return []Pattern{
		pattern("rs, rt, label", "x , x , l", op(o, val(1), val(0), label(2, hNone))),
		pattern("rs, rt, offset", "x , x , i13", op(o, val(1), val(0), val(2))),
	}
}

// pseudoI are the assembler conveniences of the base instruction set.
var pseudoI = map[string][]Pattern{
	"nop": {pattern("", "", op(isa.OP_ADDI, reg(isa.REG_ZERO), reg(isa.REG_ZERO), imm(0)))},
	"li": {
		pattern("rd, imm", "x , i12", op(isa.OP_ADDI, val(0), reg(isa.REG_ZERO), val(1))),
		pattern("rd, imm", "x , i32",
			op(isa.OP_LUI, val(0), high(1)),
			op(isa.OP_ADDI, val(0), val(0), low(1))),
	},
	"la": {pattern("rd, label", "x , l",
		op(isa.OP_AUIPC, val(0), label(1, hDelta)),
		op(isa.OP_ADDI, val(0), val(0), label(1, hPair)))},
	"mv":   {pattern("rd, rs", "x , x", op(isa.OP_ADDI, val(0), val(1), imm(0)))},
	"not":  {pattern("rd, rs", "x , x", op(isa.OP_XORI, val(0), val(1), imm(-1)))},
	"neg":  {pattern("rd, rs", "x , x", op(isa.OP_SUB, val(0), reg(isa.REG_ZERO), val(1)))},
	"seqz": {pattern("rd, rs", "x , x", op(isa.OP_SLTIU, val(0), val(1), imm(1)))},
	"snez": {pattern("rd, rs", "x , x", op(isa.OP_SLTU, val(0), reg(isa.REG_ZERO), val(1)))},
	"sltz": {pattern("rd, rs", "x , x", op(isa.OP_SLT, val(0), val(1), reg(isa.REG_ZERO)))},
	"sgtz": {pattern("rd, rs", "x , x", op(isa.OP_SLT, val(0), reg(isa.REG_ZERO), val(1)))},

	"beqz": branchZero(isa.OP_BEQ, false),
	"bnez": branchZero(isa.OP_BNE, false),
	"blez": branchZero(isa.OP_BGE, true),
	"bgez": branchZero(isa.OP_BGE, false),
	"bltz": branchZero(isa.OP_BLT, false),
	"bgtz": branchZero(isa.OP_BLT, true),
	"bgt":  branchSwap(isa.OP_BLT),
	"ble":  branchSwap(isa.OP_BGE),
	"bgtu": branchSwap(isa.OP_BLTU),
	"bleu": branchSwap(isa.OP_BGEU),

	"j": {
		pattern("label", "l", op(isa.OP_JAL, reg(isa.REG_ZERO), label(0, hNone))),
		pattern("offset", "i21", op(isa.OP_JAL, reg(isa.REG_ZERO), val(0))),
	},
	"jr":  {pattern("rs", "x", op(isa.OP_JALR, reg(isa.REG_ZERO), val(0), imm(0)))},
	"ret": {pattern("", "", op(isa.OP_JALR, reg(isa.REG_ZERO), reg(isa.REG_RA), imm(0)))},
	"call": {pattern("label", "l",
		op(isa.OP_AUIPC, reg(isa.REG_RA), label(0, hDelta)),
		op(isa.OP_JALR, reg(isa.REG_RA), reg(isa.REG_RA), label(0, hPair)))},
	"tail": {pattern("label", "l",
		op(isa.OP_AUIPC, reg(isa.REG_T1), label(0, hDelta)),
		op(isa.OP_JALR, reg(isa.REG_ZERO), reg(isa.REG_T1), label(0, hPair)))},

	"csrr": {pattern("rd, csr", "x , csr", op(isa.OP_CSRRS, val(0), val(1), reg(isa.REG_ZERO)))},
	"csrw": {pattern("csr, rs", "csr , x", op(isa.OP_CSRRW, reg(isa.REG_ZERO), val(0), val(1)))},
}

// pseudoF are the assembler conveniences of the floating point extension.
var pseudoF = map[string][]Pattern{
	"fmv.s":  {pattern("rd, rs", "f , f", op(isa.OP_FSGNJ_S, val(0), val(1), val(1)))},
	"fabs.s": {pattern("rd, rs", "f , f", op(isa.OP_FSGNJX_S, val(0), val(1), val(1)))},
	"fneg.s": {pattern("rd, rs", "f , f", op(isa.OP_FSGNJN_S, val(0), val(1), val(1)))},
}

func init() {
	for _, o := range isa.Operators() {
		mnemonics[o.String()] = &mnemonic{Ext: o.Extension(), Patterns: basePatterns(o)}
	}

	for name, pats := range pseudoI {
		mnemonics[name] = &mnemonic{Ext: isa.EXT_I, Patterns: pats}
	}

	for name, pats := range pseudoF {
		mnemonics[name] = &mnemonic{Ext: isa.EXT_F, Patterns: pats}
	}
}

// Mnemonics returns the operand hints of every mnemonic of an
// extension, for listings and completion.
func Mnemonics(ext isa.Extension) map[string][]string {
	hints := map[string][]string{}
	for name, mn := range mnemonics {
		if mn.Ext != ext {
			continue
		}
		for _, pat := range mn.Patterns {
			hints[name] = append(hints[name], pat.Hint)
		}
	}
	return hints
}
