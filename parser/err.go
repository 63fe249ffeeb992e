package parser

import (
	"errors"
	"strings"

	"github.com/ezrec/rvasm/translate"
)

var f = translate.From

var (
	// Lexical errors
	ErrCharacter  = errors.New(f("unrecognized character"))
	ErrNumber     = errors.New(f("malformed number"))
	ErrString     = errors.New(f("unterminated string"))
	ErrEscape     = errors.New(f("unknown escape"))
	ErrExpression = errors.New(f("expression invalid"))
	ErrModifier   = errors.New(f("unknown modifier"))

	// Parse errors
	ErrTooFewOperands    = errors.New(f("too few operands"))
	ErrUnmatchedOperands = errors.New(f("unmatched operands"))
	ErrTokenUnexpected   = errors.New(f("unexpected token"))
	ErrSegment           = errors.New(f("not valid in this segment"))
	ErrLabelDuplicate    = errors.New(f("label duplicated"))
	ErrLabelUndefined    = errors.New(f("label undefined"))
	ErrDirectiveUnknown  = errors.New(f("directive unknown"))
	ErrDirectiveSyntax   = errors.New(f("directive syntax"))
	ErrEquateDuplicate   = errors.New(f(".equ duplicated"))
	ErrValueRange        = errors.New(f("value out of range"))
)

// ErrLex reports a lexical error. Lexical errors stop the parse.
type ErrLex struct {
	Pos Pos
	Err error
}

func (err *ErrLex) Error() string {
	return f("%v: %v", err.Pos, err.Err)
}

func (err *ErrLex) Unwrap() error {
	return err.Err
}

// ErrParse reports an error at a source position.
type ErrParse struct {
	Pos Pos
	Err error
}

func (err *ErrParse) Error() string {
	return f("%v: %v", err.Pos, err.Err)
}

func (err *ErrParse) Unwrap() error {
	return err.Err
}

// ErrLabel reports an error concerning a named label.
type ErrLabel struct {
	Name string
	Err  error
}

func (err *ErrLabel) Error() string {
	return f("%v '%v'", err.Err, err.Name)
}

func (err *ErrLabel) Unwrap() error {
	return err.Err
}

// ErrDirective reports an error in a directive line.
type ErrDirective struct {
	Name string
	Err  error
}

func (err *ErrDirective) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrDirective) Unwrap() error {
	return err.Err
}

// ErrUnmatched reports an operand list accepted by no pattern of the
// mnemonic, listing what each pattern expects.
type ErrUnmatched struct {
	Mnemonic string
	Hints    []string
}

func (err *ErrUnmatched) Error() string {
	return f("%v for %v, expected one of: %v", ErrUnmatchedOperands, err.Mnemonic, strings.Join(err.Hints, " | "))
}

func (err *ErrUnmatched) Is(target error) bool {
	return target == ErrUnmatchedOperands
}

// Errors unpacks the joined error returned by Parse.
func Errors(err error) []error {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}

	return []error{err}
}

// ErrToken reports a token that cannot start or continue a line.
type ErrToken struct {
	Text string
	Err  error
}

func (err *ErrToken) Error() string {
	return f("%v '%v'", err.Err, err.Text)
}

func (err *ErrToken) Unwrap() error {
	return err.Err
}
