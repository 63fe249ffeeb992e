// Package console connects a simulated program's system calls to the
// host's byte streams.
package console

import (
	"bufio"
	"io"
	"strings"

	"github.com/ezrec/rvasm/cpu"
)

// Tape provides sequential I/O for a simulated program. Syscall output is
// written to Output, and input requests are answered by reading Input.
// A Prompt, when set, is written to Output before each read.
type Tape struct {
	Input  io.Reader
	Output io.Writer
	Prompt string

	reader *bufio.Reader
	source io.Reader
}

// Write passes syscall output through to Output, discarding it when
// Output is nil.
func (tc *Tape) Write(data []byte) (n int, err error) {
	if tc.Output == nil {
		return len(data), nil
	}
	return tc.Output.Write(data)
}

func (tc *Tape) input() *bufio.Reader {
	if tc.reader == nil || tc.source != tc.Input {
		tc.source = tc.Input
		tc.reader = bufio.NewReader(tc.Input)
	}
	return tc.reader
}

// Answer reads the value for an input request: a line for integers and
// strings, without its line ending, or a single character.
func (tc *Tape) Answer(kind cpu.InputKind) (input string, err error) {
	if tc.Input == nil {
		err = ErrInputEnd
		return
	}

	if len(tc.Prompt) != 0 {
		_, err = tc.Write([]byte(tc.Prompt))
		if err != nil {
			return
		}
	}

	in := tc.input()

	switch kind {
	case cpu.INPUT_INT, cpu.INPUT_STRING:
		input, err = in.ReadString('\n')
		if err == io.EOF && len(input) != 0 {
			err = nil
		}
		input = strings.TrimRight(input, "\r\n")
	case cpu.INPUT_CHAR:
		var ch rune
		ch, _, err = in.ReadRune()
		input = string(ch)
	default:
		err = ErrInputKind
		return
	}

	if err == io.EOF {
		err = ErrInputEnd
	}

	return
}
