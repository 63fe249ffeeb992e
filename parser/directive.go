package parser

import (
	"encoding/binary"
	"math"
)

type directiveFunc func(p *Parser, head Token, args []Token) error

// directives are the known directive names.
var directives map[string]directiveFunc

func init() {
	directives = map[string]directiveFunc{
		".text":    segmentDirective(SEGMENT_TEXT),
		".data":    segmentDirective(SEGMENT_DATA),
		".rodata":  segmentDirective(SEGMENT_DATA),
		".sdata":   segmentDirective(SEGMENT_DATA),
		".bss":     segmentDirective(SEGMENT_DATA),
		".section": (*Parser).section,
		".byte":    intDirective(1, -(1 << 7), 1<<8-1),
		".half":    intDirective(2, -(1 << 15), 1<<16-1),
		".word":    (*Parser).word,
		".float":   (*Parser).float,
		".ascii":   stringDirective(false),
		".asciz":   stringDirective(true),
		".string":  stringDirective(true),
		".space":   (*Parser).space,
		".zero":    (*Parser).space,
		".align":   (*Parser).align,
		".equ":     equateDirective(false),
		".eqv":     equateDirective(false),
		".set":     equateDirective(true),
		".globl":   ignoreDirective,
		".global":  ignoreDirective,
		".extern":  ignoreDirective,
	}
}

func (p *Parser) directive(head Token, args []Token) (err error) {
	err = directives[head.Text](p, head, args)
	if err != nil {
		err = &ErrDirective{Name: head.Text, Err: err}
	}
	return
}

// values splits a comma separated list.
func values(args []Token) (vals []Token, err error) {
	if len(args)%2 == 0 {
		err = ErrDirectiveSyntax
		return
	}

	for n, tok := range args {
		if n%2 == 1 {
			if tok.Kind != TOKEN_COMMA {
				err = ErrDirectiveSyntax
				return
			}
			continue
		}
		vals = append(vals, tok)
	}

	return
}

// data prepares the data segment for a directive aligned to align bytes,
// placing pending labels after the padding.
func (p *Parser) data(align int) (err error) {
	if p.segment != SEGMENT_DATA {
		err = ErrSegment
		return
	}

	for len(p.result.Data)%align != 0 {
		p.result.Data = append(p.result.Data, 0)
	}

	p.define(len(p.result.Data))
	return
}

func segmentDirective(segment Segment) directiveFunc {
	return func(p *Parser, head Token, args []Token) (err error) {
		if len(args) != 0 {
			err = ErrDirectiveSyntax
			return
		}
		p.flush()
		p.segment = segment
		return
	}
}

func (p *Parser) section(head Token, args []Token) (err error) {
	if len(args) == 0 || args[0].Kind != TOKEN_DIRECTIVE {
		err = ErrDirectiveSyntax
		return
	}

	switch args[0].Text {
	case ".text":
		return segmentDirective(SEGMENT_TEXT)(p, head, nil)
	case ".data", ".rodata", ".sdata", ".bss":
		return segmentDirective(SEGMENT_DATA)(p, head, nil)
	}

	err = ErrDirectiveSyntax
	return
}

func ignoreDirective(p *Parser, head Token, args []Token) error {
	return nil
}

func intDirective(size int, min, max int64) directiveFunc {
	return func(p *Parser, head Token, args []Token) (err error) {
		vals, err := values(args)
		if err != nil {
			return
		}
		err = p.data(size)
		if err != nil {
			return
		}

		for _, tok := range vals {
			if tok.Kind != TOKEN_INT {
				err = ErrDirectiveSyntax
				return
			}
			if tok.Int < min || tok.Int > max {
				err = ErrValueRange
				return
			}
			for n := range size {
				p.result.Data = append(p.result.Data, byte(tok.Int>>(8*n)))
			}
		}
		return
	}
}

func (p *Parser) word(head Token, args []Token) (err error) {
	vals, err := values(args)
	if err != nil {
		return
	}
	err = p.data(4)
	if err != nil {
		return
	}

	for _, tok := range vals {
		switch tok.Kind {
		case TOKEN_INT:
			if tok.Int < -(1<<31) || tok.Int > 1<<32-1 {
				err = ErrValueRange
				return
			}
			p.result.Data = binary.LittleEndian.AppendUint32(p.result.Data, uint32(tok.Int))
		case TOKEN_LABEL:
			p.result.Fixups = append(p.result.Fixups, Fixup{
				Offset: uint32(len(p.result.Data)),
				Ref:    p.result.Labels.Reference(tok.Text, tok.Pos),
				Line:   tok.Pos.Line,
			})
			p.result.Data = binary.LittleEndian.AppendUint32(p.result.Data, 0)
		default:
			err = ErrDirectiveSyntax
			return
		}
	}

	return
}

func (p *Parser) float(head Token, args []Token) (err error) {
	vals, err := values(args)
	if err != nil {
		return
	}
	err = p.data(4)
	if err != nil {
		return
	}

	for _, tok := range vals {
		var value float64
		switch tok.Kind {
		case TOKEN_FLOAT:
			value = tok.Float
		case TOKEN_INT:
			value = float64(tok.Int)
		default:
			err = ErrDirectiveSyntax
			return
		}
		p.result.Data = binary.LittleEndian.AppendUint32(p.result.Data, math.Float32bits(float32(value)))
	}

	return
}

func stringDirective(terminate bool) directiveFunc {
	return func(p *Parser, head Token, args []Token) (err error) {
		vals, err := values(args)
		if err != nil {
			return
		}
		err = p.data(1)
		if err != nil {
			return
		}

		for _, tok := range vals {
			if tok.Kind != TOKEN_STRING {
				err = ErrDirectiveSyntax
				return
			}
			p.result.Data = append(p.result.Data, tok.Text...)
			if terminate {
				p.result.Data = append(p.result.Data, 0)
			}
		}
		return
	}
}

// SPACE_LIMIT bounds a single .space reservation.
const SPACE_LIMIT = 1 << 24

func (p *Parser) space(head Token, args []Token) (err error) {
	if len(args) != 1 || args[0].Kind != TOKEN_INT {
		err = ErrDirectiveSyntax
		return
	}
	if args[0].Int < 0 || args[0].Int > SPACE_LIMIT {
		err = ErrValueRange
		return
	}
	err = p.data(1)
	if err != nil {
		return
	}

	p.result.Data = append(p.result.Data, make([]byte, args[0].Int)...)
	return
}

func (p *Parser) align(head Token, args []Token) (err error) {
	if len(args) != 1 || args[0].Kind != TOKEN_INT {
		err = ErrDirectiveSyntax
		return
	}
	shift := args[0].Int
	if shift < 0 || shift > 12 {
		err = ErrValueRange
		return
	}

	// Text is always word aligned.
	if p.segment == SEGMENT_TEXT && shift <= 2 {
		return
	}

	err = p.data(1 << shift)
	return
}

func equateDirective(redefine bool) directiveFunc {
	return func(p *Parser, head Token, args []Token) (err error) {
		if len(args) != 3 || args[1].Kind != TOKEN_COMMA || args[2].Kind != TOKEN_INT {
			err = ErrDirectiveSyntax
			return
		}

		name := args[0].Text
		_, defined := p.lex.Equates[name]
		switch {
		case args[0].Kind == TOKEN_LABEL:
		case args[0].Kind == TOKEN_INT && defined:
		default:
			err = ErrDirectiveSyntax
			return
		}

		if defined && !redefine {
			err = ErrEquateDuplicate
			return
		}

		p.lex.Equates[name] = args[2].Int
		return
	}
}
