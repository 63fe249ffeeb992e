package parser

import (
	"fmt"
	"strings"

	"github.com/ezrec/rvasm/isa"
)

type expectKind int

const (
	EXPECT_X        = expectKind(iota) // general purpose register
	EXPECT_F                           // floating point register
	EXPECT_IMM                         // integer within [Min, Max]
	EXPECT_CSR                         // CSR number or name
	EXPECT_LABEL                       // label
	EXPECT_MODIFIER                    // %hi or %lo
	EXPECT_COMMA
	EXPECT_LPAREN
	EXPECT_RPAREN
)

// expect is one token position of a pattern.
type expect struct {
	Kind     expectKind
	Min      int64
	Max      int64
	Modifier string
}

// csrNames are the CSR names accepted in place of a CSR number.
var csrNames = map[string]int64{
	"fflags":   0x001,
	"frm":      0x002,
	"fcsr":     0x003,
	"cycle":    0xc00,
	"time":     0xc01,
	"instret":  0xc02,
	"cycleh":   0xc80,
	"timeh":    0xc81,
	"instreth": 0xc82,
}

func (ex *expect) accepts(tok *Token) bool {
	switch ex.Kind {
	case EXPECT_X:
		return tok.Kind == TOKEN_REGISTER
	case EXPECT_F:
		return tok.Kind == TOKEN_FREGISTER
	case EXPECT_IMM:
		return tok.Kind == TOKEN_INT && tok.Int >= ex.Min && tok.Int <= ex.Max
	case EXPECT_CSR:
		if tok.Kind == TOKEN_LABEL {
			_, ok := csrNames[strings.ToLower(tok.Text)]
			return ok
		}
		return tok.Kind == TOKEN_INT && tok.Int >= 0 && tok.Int <= 0xfff
	case EXPECT_LABEL:
		return tok.Kind == TOKEN_LABEL
	case EXPECT_MODIFIER:
		return tok.Kind == TOKEN_MODIFIER && tok.Text == ex.Modifier
	case EXPECT_COMMA:
		return tok.Kind == TOKEN_COMMA
	case EXPECT_LPAREN:
		return tok.Kind == TOKEN_LPAREN
	case EXPECT_RPAREN:
		return tok.Kind == TOKEN_RPAREN
	}
	return false
}

// value is true for positions that produce an operand.
func (ex *expect) value() bool {
	switch ex.Kind {
	case EXPECT_X, EXPECT_F, EXPECT_IMM, EXPECT_CSR, EXPECT_LABEL:
		return true
	}
	return false
}

// expectWords is the vocabulary of pattern shapes.
var expectWords = map[string]expect{
	"x":   {Kind: EXPECT_X},
	"f":   {Kind: EXPECT_F},
	"i12": {Kind: EXPECT_IMM, Min: -(1 << 11), Max: 1<<11 - 1},
	"i13": {Kind: EXPECT_IMM, Min: -(1 << 12), Max: 1<<12 - 1},
	"i21": {Kind: EXPECT_IMM, Min: -(1 << 20), Max: 1<<20 - 1},
	"i32": {Kind: EXPECT_IMM, Min: -(1 << 31), Max: 1<<32 - 1},
	"u5":  {Kind: EXPECT_IMM, Min: 0, Max: 1<<5 - 1},
	"u20": {Kind: EXPECT_IMM, Min: 0, Max: 1<<20 - 1},
	"csr": {Kind: EXPECT_CSR},
	"l":   {Kind: EXPECT_LABEL},
	"%hi": {Kind: EXPECT_MODIFIER, Modifier: "hi"},
	"%lo": {Kind: EXPECT_MODIFIER, Modifier: "lo"},
	",":   {Kind: EXPECT_COMMA},
	"(":   {Kind: EXPECT_LPAREN},
	")":   {Kind: EXPECT_RPAREN},
}

// compile converts a space separated shape, such as "x , i12 ( x )",
// into expectations.
func compile(shape string) (expects []expect) {
	for _, word := range strings.Fields(shape) {
		ex, ok := expectWords[word]
		if !ok {
			panic(fmt.Sprintf("parser: bad pattern word %q in %q", word, shape))
		}
		expects = append(expects, ex)
	}
	return
}

type argKind int

const (
	ARG_VALUE = argKind(iota) // matched operand, by value index
	ARG_REG                   // fixed general purpose register
	ARG_IMM                   // fixed immediate
	ARG_LABEL                 // matched label, resolved through Handler
	ARG_HIGH                  // upper 20 bits of a matched 32-bit immediate
	ARG_LOW                   // lower 12 bits of a matched 32-bit immediate
)

// arg produces one operand of an emitted instruction.
type arg struct {
	Kind    argKind
	Index   int
	Reg     isa.Register
	Imm     int32
	Handler isa.Handler
}

func val(index int) arg { return arg{Kind: ARG_VALUE, Index: index} }
func reg(r isa.Register) arg { return arg{Kind: ARG_REG, Reg: r} }
func imm(v int32) arg { return arg{Kind: ARG_IMM, Imm: v} }
func label(index int, handler isa.Handler) arg { return arg{Kind: ARG_LABEL, Index: index, Handler: handler} }
func high(index int) arg { return arg{Kind: ARG_HIGH, Index: index} }
func low(index int) arg { return arg{Kind: ARG_LOW, Index: index} }

// emit is one instruction produced by a pattern.
type emit struct {
	Op   isa.Operator
	Args []arg
}

func op(o isa.Operator, args ...arg) emit {
	return emit{Op: o, Args: args}
}

// Pattern is one accepted operand list of a mnemonic.
type Pattern struct {
	Hint   string   // Human readable operand list, for error messages.
	Expect []expect // Token expectations; the line must end after the last.
	Emit   []emit   // Instructions produced on a match.
}

func pattern(hint string, shape string, emits ...emit) Pattern {
	return Pattern{Hint: hint, Expect: compile(shape), Emit: emits}
}

// Matcher selects patterns for operand lists, recording label uses in
// Table.
type Matcher struct {
	Table *Table
}

// Match runs every pattern against tokens in parallel and projects the
// first one that accepts the whole list into instructions. References
// to labels are recorded as label tokens are accepted, and dropped again
// if no pattern matches.
func (m *Matcher) Match(mnemonic string, patterns []Pattern, tokens []Token) (insts []isa.Instruction, err error) {
	mark := len(m.Table.Refs)
	refs := map[int]int{}

	alive := make([]int, len(patterns))
	for n := range patterns {
		alive[n] = n
	}

	winner := -1
	for pos := 0; winner < 0; pos++ {
		for _, n := range alive {
			if len(patterns[n].Expect) == pos && pos == len(tokens) {
				winner = n
				break
			}
		}
		if winner >= 0 {
			break
		}

		if pos == len(tokens) {
			err = ErrTooFewOperands
			break
		}

		tok := &tokens[pos]
		next := alive[:0]
		for _, n := range alive {
			expects := patterns[n].Expect
			if pos >= len(expects) || !expects[pos].accepts(tok) {
				continue
			}
			if expects[pos].Kind == EXPECT_LABEL {
				if _, ok := refs[pos]; !ok {
					refs[pos] = m.Table.Reference(tok.Text, tok.Pos)
				}
			}
			next = append(next, n)
		}
		alive = next

		if len(alive) == 0 {
			err = m.unmatched(mnemonic, patterns)
			break
		}
	}

	if err != nil {
		m.Table.Truncate(mark)
		return
	}

	pat := &patterns[winner]

	// Positions of value tokens, in order.
	var values []int
	for pos := range pat.Expect {
		if pat.Expect[pos].value() {
			values = append(values, pos)
		}
	}

	for _, em := range pat.Emit {
		inst := isa.Instruction{Op: em.Op}
		for _, a := range em.Args {
			inst.Operands = append(inst.Operands, project(a, tokens, values, refs))
		}
		insts = append(insts, inst)
	}

	return
}

func (m *Matcher) unmatched(mnemonic string, patterns []Pattern) error {
	hints := make([]string, len(patterns))
	for n, pat := range patterns {
		hints[n] = strings.TrimSpace(mnemonic + " " + pat.Hint)
	}
	return &ErrUnmatched{Mnemonic: mnemonic, Hints: hints}
}

func signExtend12(value uint32) int32 {
	return int32(value<<20) >> 20
}

func project(a arg, tokens []Token, values []int, refs map[int]int) (operand isa.Operand) {
	switch a.Kind {
	case ARG_REG:
		return isa.Reg(a.Reg)
	case ARG_IMM:
		return isa.Imm(a.Imm)
	}

	pos := values[a.Index]
	tok := &tokens[pos]

	switch a.Kind {
	case ARG_LABEL:
		operand = isa.LabelRef(refs[pos], a.Handler)
	case ARG_HIGH:
		operand = isa.Imm(int32(((uint32(tok.Int) + 0x800) >> 12) & 0xfffff))
	case ARG_LOW:
		operand = isa.Imm(signExtend12(uint32(tok.Int) & 0xfff))
	default:
		switch tok.Kind {
		case TOKEN_REGISTER:
			operand = isa.Reg(tok.Reg)
		case TOKEN_FREGISTER:
			operand = isa.FReg(tok.Reg)
		case TOKEN_LABEL:
			operand = isa.Imm(int32(csrNames[strings.ToLower(tok.Text)]))
		default:
			operand = isa.Imm(int32(tok.Int))
		}
	}

	return
}
