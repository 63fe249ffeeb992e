package emulator

import (
	"errors"

	"github.com/ezrec/rvasm/translate"
)

var f = translate.From

var (
	ErrConsoleMissing = errors.New(f("console missing"))
	ErrSessionUnknown = errors.New(f("session unknown"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
