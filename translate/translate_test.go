package translate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	SetLanguage()
	assert.Equal("line 3 bad", From("line %d %v", 3, errors.New("bad")))
	assert.Equal("fault at 0x00400000", From("fault at 0x%08x", 0x400000))

	SetLanguage("fr-CA", DEFAULT_LANGUAGE)
	assert.Equal("label x missing", From("label %v missing", "x"))
}
