package parser

import (
	"errors"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/rvasm/isa"
)

// Fixup is a data word holding the address of a label.
type Fixup struct {
	Offset uint32 // Byte offset into the data segment.
	Ref    int    // Label reference index.
	Line   int    // Source line of the directive.
}

// Result is a parsed program.
type Result struct {
	Text   []isa.Instruction // Text segment, one entry per machine word.
	Data   []byte            // Data segment image.
	Fixups []Fixup           // Data words awaiting label addresses.
	Labels *Table            // Label definitions and references.
}

// Parser is a line oriented RISC-V assembly parser.
type Parser struct {
	Extensions []isa.Extension // Enabled extensions; all when empty.
	Verbose    bool            // If set, verbosely logs the parser actions.

	predefine map[string]int64

	lex     *Lexer
	matcher Matcher
	result  *Result
	segment Segment
	pending []Token // Labels waiting for the next item.
	errs    []error
}

// Predefine defines an equate visible to every parse.
func (p *Parser) Predefine(name string, value int64) {
	if p.predefine == nil {
		p.predefine = map[string]int64{name: value}
	} else {
		p.predefine[name] = value
	}
}

// PredefineAll defines every equate of a sequence.
func (p *Parser) PredefineAll(equates iter.Seq2[string, int64]) {
	for name, value := range equates {
		p.Predefine(name, value)
	}
}

// Parse parses source with all extensions enabled.
func Parse(source string) (res *Result, err error) {
	return (&Parser{}).Parse(source)
}

// Parse parses a complete program. Errors are collected across the
// whole source and returned joined; see Errors. A lexical error stops
// the parse. The result is returned even when there are errors, holding
// everything that parsed.
func (p *Parser) Parse(source string) (res *Result, err error) {
	p.lex = NewLexer(source)
	if len(p.Extensions) != 0 {
		p.lex.Extensions = p.Extensions
	}
	maps.Copy(p.lex.Equates, p.predefine)

	p.result = &Result{Labels: &Table{}}
	p.matcher = Matcher{Table: p.result.Labels}
	p.segment = SEGMENT_TEXT
	p.pending = nil
	p.errs = nil

	lexed := true
	for {
		tokens, eof, lex_err := p.readLine()
		if lex_err != nil {
			p.errs = append(p.errs, lex_err)
			lexed = false
			break
		}

		p.parseLine(tokens)

		if eof {
			break
		}
	}

	p.flush()

	if lexed {
		for ref := range p.result.Labels.Undefined() {
			p.errs = append(p.errs, &ErrParse{Pos: ref.Pos, Err: &ErrLabel{Name: ref.Name, Err: ErrLabelUndefined}})
		}
	}

	res = p.result
	err = errors.Join(p.errs...)
	return
}

// Equates returns the equates defined at the end of the last parse.
func (p *Parser) Equates() iter.Seq2[string, int64] {
	if p.lex == nil {
		return maps.All(p.predefine)
	}
	return maps.All(p.lex.Equates)
}

func (p *Parser) readLine() (tokens []Token, eof bool, err error) {
	for {
		var tok Token
		tok, err = p.lex.Next()
		if err != nil {
			return
		}
		switch tok.Kind {
		case TOKEN_EOF:
			eof = true
			return
		case TOKEN_NEWLINE:
			return
		}
		tokens = append(tokens, tok)
	}
}

func (p *Parser) parseLine(tokens []Token) {
	for len(tokens) >= 2 && tokens[0].Kind == TOKEN_LABEL && tokens[1].Kind == TOKEN_COLON {
		p.pending = append(p.pending, tokens[0])
		tokens = tokens[2:]
	}

	if len(tokens) == 0 {
		return
	}

	if p.Verbose {
		log.Printf("%v: %v\n", tokens[0].Pos.Line, tokens)
	}

	head := tokens[0]

	var err error
	switch head.Kind {
	case TOKEN_DIRECTIVE:
		err = p.directive(head, tokens[1:])
	case TOKEN_MNEMONIC:
		err = p.instruction(head, tokens[1:])
	case TOKEN_LABEL:
		if strings.HasPrefix(head.Text, ".") {
			err = &ErrDirective{Name: head.Text, Err: ErrDirectiveUnknown}
		} else {
			err = &ErrToken{Text: head.Text, Err: ErrTokenUnexpected}
		}
	default:
		err = &ErrToken{Text: head.String(), Err: ErrTokenUnexpected}
	}

	if err != nil {
		p.errs = append(p.errs, &ErrParse{Pos: head.Pos, Err: err})
	}
}

// define places the pending labels at index of the current segment.
func (p *Parser) define(index int) {
	for _, tok := range p.pending {
		err := p.result.Labels.Define(tok.Text, p.segment, index, tok.Pos)
		if err != nil {
			p.errs = append(p.errs, &ErrParse{Pos: tok.Pos, Err: err})
		}
	}
	p.pending = p.pending[:0]
}

// flush places the pending labels at the end of the current segment.
func (p *Parser) flush() {
	if p.segment == SEGMENT_TEXT {
		p.define(len(p.result.Text))
	} else {
		p.define(len(p.result.Data))
	}
}

func (p *Parser) instruction(head Token, args []Token) (err error) {
	if p.segment != SEGMENT_TEXT {
		err = &ErrToken{Text: head.Text, Err: ErrSegment}
		return
	}

	p.define(len(p.result.Text))

	insts, err := p.matcher.Match(head.Text, mnemonics[head.Text].Patterns, args)
	if err != nil {
		return
	}

	for _, inst := range insts {
		inst.Line = head.Pos.Line
		if p.Verbose {
			log.Printf("%v: %v\n", inst.Line, inst)
		}
		p.result.Text = append(p.result.Text, inst)
	}

	return
}
