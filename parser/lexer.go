package parser

import (
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ezrec/rvasm/isa"
)

// Lexer produces tokens from assembly source on demand. Equates may be
// added between calls to Next, and take effect on the next identifier.
type Lexer struct {
	Extensions []isa.Extension  // Enabled extensions for mnemonic and register dispatch.
	Equates    map[string]int64 // Identifiers that lex as integers.

	source string
	offset int
	pos    Pos
}

// NewLexer creates a lexer over source with every extension enabled.
func NewLexer(source string) *Lexer {
	return &Lexer{
		Extensions: isa.Extensions,
		Equates:    map[string]int64{},
		source:     source,
		pos:        Pos{Line: 1, Col: 1},
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '.'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

var escapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'e':  '\033',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

func (lex *Lexer) enabled(ext isa.Extension) bool {
	return slices.Contains(lex.Extensions, ext)
}

func (lex *Lexer) peek(n int) byte {
	if lex.offset+n < len(lex.source) {
		return lex.source[lex.offset+n]
	}
	return 0
}

func (lex *Lexer) done() bool {
	return lex.offset >= len(lex.source)
}

func (lex *Lexer) advance() (c byte) {
	c = lex.source[lex.offset]
	lex.offset++
	if c == '\n' {
		lex.pos.Line++
		lex.pos.Col = 1
	} else {
		lex.pos.Col++
	}
	return
}

// skip passes over blanks and comments, stopping at a newline.
func (lex *Lexer) skip() {
	for !lex.done() {
		switch lex.peek(0) {
		case ' ', '\t', '\r', '\f', '\v':
			lex.advance()
		case '#', ';':
			for !lex.done() && lex.peek(0) != '\n' {
				lex.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token, TOKEN_EOF at the end of the source.
func (lex *Lexer) Next() (tok Token, err error) {
	lex.skip()

	tok.Pos = lex.pos
	if lex.done() {
		tok.Kind = TOKEN_EOF
		return
	}

	start := lex.offset
	c := lex.peek(0)

	switch {
	case c == '\n':
		lex.advance()
		tok.Kind = TOKEN_NEWLINE
	case c == ',':
		lex.advance()
		tok.Kind = TOKEN_COMMA
	case c == '(':
		lex.advance()
		tok.Kind = TOKEN_LPAREN
	case c == ')':
		lex.advance()
		tok.Kind = TOKEN_RPAREN
	case c == ':':
		lex.advance()
		tok.Kind = TOKEN_COLON
	case c == '%':
		lex.advance()
		err = lex.modifier(&tok)
	case c == '"':
		err = lex.string(&tok)
	case c == '\'':
		err = lex.char(&tok)
	case c == '$' && lex.peek(1) == '(':
		err = lex.expression(&tok)
	case isDigit(c):
		err = lex.number(&tok)
	case (c == '-' || c == '+') && (isDigit(lex.peek(1)) || lex.peek(1) == '.'):
		err = lex.number(&tok)
	case c == '-' || c == '+':
		lex.advance()
		var inner Token
		inner, err = lex.Next()
		if err != nil {
			return
		}
		if inner.Kind != TOKEN_INT {
			err = ErrCharacter
			break
		}
		tok.Kind = TOKEN_INT
		tok.Int = inner.Int
		if c == '-' {
			tok.Int = -inner.Int
		}
	case isIdentStart(c):
		lex.identifier(&tok)
	default:
		err = ErrCharacter
	}

	if err != nil {
		err = &ErrLex{Pos: tok.Pos, Err: err}
		return
	}

	if len(tok.Text) == 0 && tok.Kind != TOKEN_STRING {
		tok.Text = lex.source[start:lex.offset]
	}

	return
}

// Tokens iterates over the remaining tokens. Iteration stops after the
// first error.
func (lex *Lexer) Tokens() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := lex.Next()
			if !yield(tok, err) || err != nil || tok.Kind == TOKEN_EOF {
				return
			}
		}
	}
}

func (lex *Lexer) word() string {
	start := lex.offset
	for !lex.done() && isIdentChar(lex.peek(0)) {
		lex.advance()
	}
	return lex.source[start:lex.offset]
}

func (lex *Lexer) modifier(tok *Token) (err error) {
	name := strings.ToLower(lex.word())
	switch name {
	case "hi", "lo":
		tok.Kind = TOKEN_MODIFIER
		tok.Text = name
	default:
		err = ErrModifier
	}
	return
}

// identifier dispatches a name: mnemonic, then register, then equate,
// otherwise label. Names starting with '.' are directives when known.
func (lex *Lexer) identifier(tok *Token) {
	name := lex.word()
	lower := strings.ToLower(name)
	tok.Text = name

	if name[0] == '.' {
		if _, ok := directives[lower]; ok {
			tok.Kind = TOKEN_DIRECTIVE
			tok.Text = lower
		} else {
			tok.Kind = TOKEN_LABEL
		}
		return
	}

	if mn, ok := mnemonics[lower]; ok && lex.enabled(mn.Ext) {
		tok.Kind = TOKEN_MNEMONIC
		tok.Text = lower
		return
	}

	if reg, ok := isa.LookupRegister(name); ok {
		tok.Kind = TOKEN_REGISTER
		tok.Reg = reg
		return
	}

	if lex.enabled(isa.EXT_F) {
		if reg, ok := isa.LookupFRegister(name); ok {
			tok.Kind = TOKEN_FREGISTER
			tok.Reg = reg
			return
		}
	}

	if value, ok := lex.Equates[name]; ok {
		tok.Kind = TOKEN_INT
		tok.Int = value
		return
	}

	tok.Kind = TOKEN_LABEL
}

// exponent is true when text is a decimal mantissa ending in an exponent mark.
func exponent(text string) bool {
	text = strings.TrimLeft(text, "+-")
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") || strings.HasPrefix(lower, "0o") {
		return false
	}
	return strings.HasSuffix(lower, "e")
}

func (lex *Lexer) number(tok *Token) (err error) {
	start := lex.offset
	if c := lex.peek(0); c == '-' || c == '+' {
		lex.advance()
	}

	for !lex.done() {
		c := lex.peek(0)
		if isIdentChar(c) {
			lex.advance()
			continue
		}
		if (c == '-' || c == '+') && exponent(lex.source[start:lex.offset]) {
			lex.advance()
			continue
		}
		break
	}

	digits := strings.ReplaceAll(lex.source[start:lex.offset], "_", "")

	negative := false
	body := digits
	if body[0] == '-' || body[0] == '+' {
		negative = body[0] == '-'
		body = body[1:]
	}
	lower := strings.ToLower(body)

	tok.Kind = TOKEN_INT
	switch {
	case strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") || strings.HasPrefix(lower, "0o"):
		var value uint64
		value, err = strconv.ParseUint(lower, 0, 64)
		if err != nil || value > math.MaxInt64 {
			err = ErrNumber
			return
		}
		tok.Int = int64(value)
		if negative {
			tok.Int = -tok.Int
		}
	case strings.ContainsAny(lower, ".e"):
		tok.Kind = TOKEN_FLOAT
		tok.Float, err = strconv.ParseFloat(digits, 64)
		if err != nil {
			err = ErrNumber
			return
		}
	default:
		tok.Int, err = strconv.ParseInt(digits, 10, 64)
		if err != nil {
			err = ErrNumber
			return
		}
	}

	return
}

func (lex *Lexer) string(tok *Token) (err error) {
	lex.advance()

	var text strings.Builder
	for {
		if lex.done() || lex.peek(0) == '\n' {
			err = ErrString
			return
		}
		c := lex.advance()
		if c == '"' {
			break
		}
		if c == '\\' {
			if lex.done() {
				err = ErrString
				return
			}
			esc, ok := escapes[lex.advance()]
			if !ok {
				err = ErrEscape
				return
			}
			c = esc
		}
		text.WriteByte(c)
	}

	tok.Kind = TOKEN_STRING
	tok.Text = text.String()
	return
}

func (lex *Lexer) char(tok *Token) (err error) {
	lex.advance()
	if lex.done() || lex.peek(0) == '\n' {
		err = ErrCharacter
		return
	}

	var value rune
	if lex.peek(0) == '\\' {
		lex.advance()
		if lex.done() {
			err = ErrCharacter
			return
		}
		esc, ok := escapes[lex.advance()]
		if !ok {
			err = ErrEscape
			return
		}
		value = rune(esc)
	} else {
		var size int
		value, size = utf8.DecodeRuneInString(lex.source[lex.offset:])
		for range size {
			lex.advance()
		}
	}

	if lex.done() || lex.peek(0) != '\'' {
		err = ErrCharacter
		return
	}
	lex.advance()

	tok.Kind = TOKEN_INT
	tok.Int = int64(value)
	return
}

func (lex *Lexer) expression(tok *Token) (err error) {
	lex.advance()
	lex.advance()

	start := lex.offset
	depth := 1
	for depth > 0 {
		if lex.done() || lex.peek(0) == '\n' {
			err = ErrExpression
			return
		}
		switch lex.advance() {
		case '(':
			depth++
		case ')':
			depth--
		}
	}

	expr := lex.source[start : lex.offset-1]
	tok.Kind = TOKEN_INT
	tok.Int, err = evaluate(expr, lex.Equates, tok.Pos.Line)
	return
}
