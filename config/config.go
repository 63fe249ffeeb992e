// Package config holds the memory layout shared by the assembler and
// the simulator.
package config

import (
	"io"
	"iter"
	"maps"

	"github.com/BurntSushi/toml"
)

// Default memory layout, compatible with the RARS compact-data map.
const (
	TEXT_BASE      = 0x00400000
	DATA_BASE      = 0x10010000
	HEAP_BASE      = 0x10040000
	GLOBAL_POINTER = 0x10008000
	STACK_BASE     = 0x7ffffffc
	STACK_POINTER  = 0x7fffeffc
	TEXT_LIMIT     = 0x0fc00000 // TEXT_BASE up to 0x10000000
	DATA_LIMIT     = HEAP_BASE - DATA_BASE
	HISTORY_LIMIT  = 4096
)

// Config is the memory layout of a simulation session. It must be
// supplied before a program is loaded.
type Config struct {
	TextBase      uint32 `toml:"text_base"`      // Address of the first instruction.
	DataBase      uint32 `toml:"data_base"`      // Address of the first data byte.
	HeapBase      uint32 `toml:"heap_base"`      // First address past the static data.
	GlobalPointer uint32 `toml:"global_pointer"` // Initial gp.
	StackBase     uint32 `toml:"stack_base"`     // Highest stack address.
	StackPointer  uint32 `toml:"stack_pointer"`  // Initial sp.
	TextLimit     uint32 `toml:"text_limit"`     // Maximum text segment size, in bytes.
	DataLimit     uint32 `toml:"data_limit"`     // Maximum data segment size, in bytes.
	HistoryLimit  int    `toml:"history_limit"`  // Maximum undo depth.
}

// Default returns the default layout.
func Default() *Config {
	return &Config{
		TextBase:      TEXT_BASE,
		DataBase:      DATA_BASE,
		HeapBase:      HEAP_BASE,
		GlobalPointer: GLOBAL_POINTER,
		StackBase:     STACK_BASE,
		StackPointer:  STACK_POINTER,
		TextLimit:     TEXT_LIMIT,
		DataLimit:     DATA_LIMIT,
		HistoryLimit:  HISTORY_LIMIT,
	}
}

// Load reads a TOML layout. Keys not present keep their default value.
func Load(r io.Reader) (cfg *Config, err error) {
	cfg = Default()

	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		err = &ErrConfig{Err: err}
		cfg = nil
		return
	}

	if keys := md.Undecoded(); len(keys) != 0 {
		err = &ErrConfig{Key: keys[0].String(), Err: ErrKeyUnknown}
		cfg = nil
		return
	}

	err = cfg.Validate()
	if err != nil {
		cfg = nil
		return
	}

	return
}

func overlaps(base_a, size_a, base_b, size_b uint32) bool {
	end_a := uint64(base_a) + uint64(size_a)
	end_b := uint64(base_b) + uint64(size_b)
	return uint64(base_a) < end_b && uint64(base_b) < end_a
}

// Validate checks alignment and that the text and data segments fit
// without overlapping.
func (cfg *Config) Validate() (err error) {
	for _, check := range []struct {
		key   string
		value uint32
	}{
		{"text_base", cfg.TextBase},
		{"data_base", cfg.DataBase},
		{"heap_base", cfg.HeapBase},
		{"stack_pointer", cfg.StackPointer},
	} {
		if check.value%4 != 0 {
			err = &ErrConfig{Key: check.key, Err: ErrAlignment}
			return
		}
	}

	if cfg.TextLimit == 0 || uint64(cfg.TextBase)+uint64(cfg.TextLimit) > 1<<32 {
		err = &ErrConfig{Key: "text_limit", Err: ErrLimit}
		return
	}

	if uint64(cfg.DataBase)+uint64(cfg.DataLimit) > 1<<32 {
		err = &ErrConfig{Key: "data_limit", Err: ErrLimit}
		return
	}

	if overlaps(cfg.TextBase, cfg.TextLimit, cfg.DataBase, cfg.DataLimit) {
		err = &ErrConfig{Key: "data_base", Err: ErrOverlap}
		return
	}

	if cfg.HistoryLimit < 0 {
		err = &ErrConfig{Key: "history_limit", Err: ErrLimit}
		return
	}

	return
}

// Equates returns the layout addresses as predefined assembler equates.
func (cfg *Config) Equates() iter.Seq2[string, int64] {
	return maps.All(map[string]int64{
		"TEXT_BASE":      int64(cfg.TextBase),
		"DATA_BASE":      int64(cfg.DataBase),
		"HEAP_BASE":      int64(cfg.HeapBase),
		"GLOBAL_POINTER": int64(cfg.GlobalPointer),
		"STACK_BASE":     int64(cfg.StackBase),
		"STACK_POINTER":  int64(cfg.StackPointer),
	})
}
