package console

import (
	"errors"

	"github.com/ezrec/rvasm/translate"
)

var f = translate.From

var (
	ErrInputEnd  = errors.New(f("end of input"))
	ErrInputKind = errors.New(f("input kind unknown"))
)
