package config

import (
	"errors"

	"github.com/ezrec/rvasm/translate"
)

var f = translate.From

var (
	ErrAlignment  = errors.New(f("address not word aligned"))
	ErrLimit      = errors.New(f("segment limit invalid"))
	ErrOverlap    = errors.New(f("segments overlap"))
	ErrKeyUnknown = errors.New(f("unknown key"))
)

// ErrConfig reports an invalid configuration entry.
type ErrConfig struct {
	Key string
	Err error
}

func (err *ErrConfig) Error() string {
	if len(err.Key) == 0 {
		return f("config: %v", err.Err)
	}
	return f("config: %v: %v", err.Key, err.Err)
}

func (err *ErrConfig) Unwrap() error {
	return err.Err
}
