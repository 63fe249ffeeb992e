package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvasm/isa"
)

func lexAll(lex *Lexer) (tokens []Token, err error) {
	for tok, lex_err := range lex.Tokens() {
		if lex_err != nil {
			err = lex_err
			return
		}
		tokens = append(tokens, tok)
	}
	return
}

func TestLexerLine(t *testing.T) {
	assert := assert.New(t)

	tokens, err := lexAll(NewLexer("loop: addi a0, a0, -1 # comment\n\tlw t0, %lo(msg)(sp) ; more\n"))
	assert.NoError(err)

	kinds := []TokenKind{
		TOKEN_LABEL, TOKEN_COLON, TOKEN_MNEMONIC, TOKEN_REGISTER, TOKEN_COMMA,
		TOKEN_REGISTER, TOKEN_COMMA, TOKEN_INT, TOKEN_NEWLINE,
		TOKEN_MNEMONIC, TOKEN_REGISTER, TOKEN_COMMA, TOKEN_MODIFIER, TOKEN_LPAREN,
		TOKEN_LABEL, TOKEN_RPAREN, TOKEN_LPAREN, TOKEN_REGISTER, TOKEN_RPAREN,
		TOKEN_NEWLINE, TOKEN_EOF,
	}
	if !assert.Len(tokens, len(kinds)) {
		return
	}
	for n, kind := range kinds {
		assert.Equal(kind, tokens[n].Kind, "token %d: %v", n, tokens[n])
	}

	assert.Equal(Pos{Line: 1, Col: 1}, tokens[0].Pos)
	assert.Equal("loop", tokens[0].Text)
	assert.Equal(Pos{Line: 1, Col: 7}, tokens[2].Pos)
	assert.Equal("addi", tokens[2].Text)
	assert.Equal(isa.REG_A0, tokens[3].Reg)
	assert.Equal(int64(-1), tokens[7].Int)
	assert.Equal(Pos{Line: 1, Col: 20}, tokens[7].Pos)
	assert.Equal(Pos{Line: 2, Col: 2}, tokens[9].Pos)
	assert.Equal("lo", tokens[12].Text)
	assert.Equal("msg", tokens[14].Text)
	assert.Equal(isa.REG_SP, tokens[17].Reg)
}

func TestLexerNumbers(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		kind   TokenKind
		value  int64
		float  float64
		err    error
	}){
		{"42", TOKEN_INT, 42, 0, nil},
		{"-42", TOKEN_INT, -42, 0, nil},
		{"+7", TOKEN_INT, 7, 0, nil},
		{"0x10", TOKEN_INT, 16, 0, nil},
		{"0XfF", TOKEN_INT, 255, 0, nil},
		{"-0x10", TOKEN_INT, -16, 0, nil},
		{"0b101", TOKEN_INT, 5, 0, nil},
		{"1_000_000", TOKEN_INT, 1000000, 0, nil},
		{"0xffffffff", TOKEN_INT, 0xffffffff, 0, nil},
		{"'a'", TOKEN_INT, 'a', 0, nil},
		{"'\\n'", TOKEN_INT, '\n', 0, nil},
		{"'é'", TOKEN_INT, 'é', 0, nil},
		{"1.5", TOKEN_FLOAT, 0, 1.5, nil},
		{"-2e3", TOKEN_FLOAT, 0, -2000, nil},
		{"2.5e-1", TOKEN_FLOAT, 0, 0.25, nil},
		{"$(3*4+1)", TOKEN_INT, 13, 0, nil},
		{"-$(1<<4)", TOKEN_INT, -16, 0, nil},
		{"99999999999999999999", TOKEN_INT, 0, 0, ErrNumber},
		{"0x1ffffffffffffffff", TOKEN_INT, 0, 0, ErrNumber},
		{"12ab", TOKEN_INT, 0, 0, ErrNumber},
		{"'ab'", TOKEN_INT, 0, 0, ErrCharacter},
		{"$(1 +)", TOKEN_INT, 0, 0, ErrExpression},
		{"$(\"str\")", TOKEN_INT, 0, 0, ErrExpression},
		{"-a0", TOKEN_INT, 0, 0, ErrCharacter},
	}

	for _, entry := range table {
		tok, err := NewLexer(entry.source).Next()
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.source)
			var lex_err *ErrLex
			assert.ErrorAs(err, &lex_err, entry.source)
			continue
		}
		if !assert.NoError(err, entry.source) {
			continue
		}
		assert.Equal(entry.kind, tok.Kind, entry.source)
		if entry.kind == TOKEN_INT {
			assert.Equal(entry.value, tok.Int, entry.source)
		} else {
			assert.Equal(entry.float, tok.Float, entry.source)
		}
	}
}

func TestLexerIdentifiers(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		exts   []isa.Extension
		kind   TokenKind
		text   string
	}){
		{"ADDI", nil, TOKEN_MNEMONIC, "addi"},
		{"li", nil, TOKEN_MNEMONIC, "li"},
		{"fadd.s", nil, TOKEN_MNEMONIC, "fadd.s"},
		{"fadd.s", []isa.Extension{isa.EXT_I}, TOKEN_LABEL, "fadd.s"},
		{"fa0", nil, TOKEN_FREGISTER, "fa0"},
		{"fa0", []isa.Extension{isa.EXT_I}, TOKEN_LABEL, "fa0"},
		{"x5", nil, TOKEN_REGISTER, "x5"},
		{"fp", nil, TOKEN_REGISTER, "fp"},
		{"main", nil, TOKEN_LABEL, "main"},
		{".text", nil, TOKEN_DIRECTIVE, ".text"},
		{".WORD", nil, TOKEN_DIRECTIVE, ".word"},
		{".L1", nil, TOKEN_LABEL, ".L1"},
		{"\"a\\tb\\\"c\"", nil, TOKEN_STRING, "a\tb\"c"},
	}

	for _, entry := range table {
		lex := NewLexer(entry.source)
		if entry.exts != nil {
			lex.Extensions = entry.exts
		}
		tok, err := lex.Next()
		if !assert.NoError(err, entry.source) {
			continue
		}
		assert.Equal(entry.kind, tok.Kind, entry.source)
		assert.Equal(entry.text, tok.Text, entry.source)
	}
}

func TestLexerEquates(t *testing.T) {
	assert := assert.New(t)

	lex := NewLexer("SIZE $(SIZE*2) size")
	lex.Equates["SIZE"] = 12

	tokens, err := lexAll(lex)
	assert.NoError(err)
	if assert.Len(tokens, 4) {
		assert.Equal(TOKEN_INT, tokens[0].Kind)
		assert.Equal(int64(12), tokens[0].Int)
		assert.Equal("SIZE", tokens[0].Text)
		assert.Equal(int64(24), tokens[1].Int)
		assert.Equal(TOKEN_LABEL, tokens[2].Kind)
	}
}

func TestLexerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		err    error
		pos    Pos
	}){
		{"add @", ErrCharacter, Pos{1, 5}},
		{"\n  \"abc", ErrString, Pos{2, 3}},
		{"\"a\\q\"", ErrEscape, Pos{1, 1}},
		{"%foo(x)", ErrModifier, Pos{1, 1}},
		{"$(1+2", ErrExpression, Pos{1, 1}},
	}

	for _, entry := range table {
		_, err := lexAll(NewLexer(entry.source))
		assert.ErrorIs(err, entry.err, entry.source)
		var lex_err *ErrLex
		if assert.ErrorAs(err, &lex_err, entry.source) {
			assert.Equal(entry.pos, lex_err.Pos, entry.source)
		}
	}
}
