package parser

import (
	"fmt"

	"github.com/ezrec/rvasm/isa"
)

// TokenKind is the lexical class of a Token.
type TokenKind int

//go:generate go tool stringer -linecomment -type=TokenKind
const (
	TOKEN_EOF       = TokenKind(0)  // end of file
	TOKEN_NEWLINE   = TokenKind(1)  // newline
	TOKEN_COMMA     = TokenKind(2)  // ','
	TOKEN_LPAREN    = TokenKind(3)  // '('
	TOKEN_RPAREN    = TokenKind(4)  // ')'
	TOKEN_COLON     = TokenKind(5)  // ':'
	TOKEN_REGISTER  = TokenKind(6)  // register
	TOKEN_FREGISTER = TokenKind(7)  // float register
	TOKEN_INT       = TokenKind(8)  // integer
	TOKEN_FLOAT     = TokenKind(9)  // float
	TOKEN_LABEL     = TokenKind(10) // label
	TOKEN_DIRECTIVE = TokenKind(11) // directive
	TOKEN_MNEMONIC  = TokenKind(12) // mnemonic
	TOKEN_STRING    = TokenKind(13) // string
	TOKEN_MODIFIER  = TokenKind(14) // modifier
)

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (pos Pos) String() string {
	return fmt.Sprintf("%d:%d", pos.Line, pos.Col)
}

// Token is one lexical item of the source.
type Token struct {
	Kind  TokenKind
	Pos   Pos
	Text  string // Source spelling. Unescaped contents for TOKEN_STRING, lower case name for TOKEN_MNEMONIC and TOKEN_MODIFIER.
	Reg   isa.Register
	Int   int64
	Float float64
}

func (tok Token) String() string {
	switch tok.Kind {
	case TOKEN_EOF, TOKEN_NEWLINE:
		return tok.Kind.String()
	case TOKEN_STRING:
		return fmt.Sprintf("%q", tok.Text)
	}
	return tok.Text
}
