package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvasm/cpu"
)

func TestTape_Answer(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Input: strings.NewReader("42\r\nhello world\nxy\nlast")}

	input, err := tape.Answer(cpu.INPUT_INT)
	assert.NoError(err)
	assert.Equal("42", input)

	input, err = tape.Answer(cpu.INPUT_STRING)
	assert.NoError(err)
	assert.Equal("hello world", input)

	input, err = tape.Answer(cpu.INPUT_CHAR)
	assert.NoError(err)
	assert.Equal("x", input)

	input, err = tape.Answer(cpu.INPUT_CHAR)
	assert.NoError(err)
	assert.Equal("y", input)

	input, err = tape.Answer(cpu.INPUT_CHAR)
	assert.NoError(err)
	assert.Equal("\n", input)

	// A final line without a newline is still an answer.
	input, err = tape.Answer(cpu.INPUT_STRING)
	assert.NoError(err)
	assert.Equal("last", input)

	_, err = tape.Answer(cpu.INPUT_INT)
	assert.ErrorIs(err, ErrInputEnd)

	_, err = tape.Answer(cpu.INPUT_CHAR)
	assert.ErrorIs(err, ErrInputEnd)

	_, err = tape.Answer(cpu.INPUT_NONE)
	assert.ErrorIs(err, ErrInputKind)
}

func TestTape_Output(t *testing.T) {
	assert := assert.New(t)

	var out bytes.Buffer
	tape := &Tape{
		Input:  strings.NewReader("7\n"),
		Output: &out,
		Prompt: "> ",
	}

	n, err := tape.Write([]byte("sum: "))
	assert.NoError(err)
	assert.Equal(5, n)

	input, err := tape.Answer(cpu.INPUT_INT)
	assert.NoError(err)
	assert.Equal("7", input)
	assert.Equal("sum: > ", out.String())

	// Without an output, writes are discarded.
	tape = &Tape{}
	n, err = tape.Write([]byte("lost"))
	assert.NoError(err)
	assert.Equal(4, n)

	_, err = tape.Answer(cpu.INPUT_INT)
	assert.ErrorIs(err, ErrInputEnd)
}
