package cpu

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ezrec/rvasm/isa"
)

// Syscall service numbers, selected by a7.
const (
	SYSCALL_PRINT_INT      = 1
	SYSCALL_PRINT_STRING   = 4
	SYSCALL_READ_INT       = 5
	SYSCALL_READ_STRING    = 8
	SYSCALL_EXIT           = 10
	SYSCALL_PRINT_CHAR     = 11
	SYSCALL_READ_CHAR      = 12
	SYSCALL_PRINT_HEX      = 34
	SYSCALL_PRINT_BINARY   = 35
	SYSCALL_PRINT_UNSIGNED = 36
	SYSCALL_EXIT_CODE      = 93
)

// STRING_LIMIT bounds the length of a printed string.
const STRING_LIMIT = 1 << 20

var _syscall_defines = map[string]int64{
	"SYSCALL_PRINT_INT":      SYSCALL_PRINT_INT,
	"SYSCALL_PRINT_STRING":   SYSCALL_PRINT_STRING,
	"SYSCALL_READ_INT":       SYSCALL_READ_INT,
	"SYSCALL_READ_STRING":    SYSCALL_READ_STRING,
	"SYSCALL_EXIT":           SYSCALL_EXIT,
	"SYSCALL_PRINT_CHAR":     SYSCALL_PRINT_CHAR,
	"SYSCALL_READ_CHAR":      SYSCALL_READ_CHAR,
	"SYSCALL_PRINT_HEX":      SYSCALL_PRINT_HEX,
	"SYSCALL_PRINT_BINARY":   SYSCALL_PRINT_BINARY,
	"SYSCALL_PRINT_UNSIGNED": SYSCALL_PRINT_UNSIGNED,
	"SYSCALL_EXIT_CODE":      SYSCALL_EXIT_CODE,
}

var syscalls = map[uint32]handler{
	SYSCALL_PRINT_INT: func(cpu *Cpu, _ *isa.Fields) error {
		return cpu.print("%d", int32(cpu.Register[isa.REG_A0]))
	},
	SYSCALL_PRINT_STRING: func(cpu *Cpu, _ *isa.Fields) error {
		return cpu.print("%s", cpu.cstring(cpu.Register[isa.REG_A0]))
	},
	SYSCALL_PRINT_CHAR: func(cpu *Cpu, _ *isa.Fields) error {
		_, err := cpu.Output.Write([]byte{byte(cpu.Register[isa.REG_A0])})
		return err
	},
	SYSCALL_PRINT_HEX: func(cpu *Cpu, _ *isa.Fields) error {
		return cpu.print("0x%08x", cpu.Register[isa.REG_A0])
	},
	SYSCALL_PRINT_BINARY: func(cpu *Cpu, _ *isa.Fields) error {
		return cpu.print("0b%032b", cpu.Register[isa.REG_A0])
	},
	SYSCALL_PRINT_UNSIGNED: func(cpu *Cpu, _ *isa.Fields) error {
		return cpu.print("%d", cpu.Register[isa.REG_A0])
	},
	SYSCALL_READ_INT:    waitFor(INPUT_INT),
	SYSCALL_READ_STRING: waitFor(INPUT_STRING),
	SYSCALL_READ_CHAR:   waitFor(INPUT_CHAR),
	SYSCALL_EXIT: func(cpu *Cpu, _ *isa.Fields) error {
		cpu.state = Stopped(0)
		return nil
	},
	SYSCALL_EXIT_CODE: func(cpu *Cpu, _ *isa.Fields) error {
		cpu.state = Stopped(int32(cpu.Register[isa.REG_A0]))
		return nil
	},
}

func ecall(cpu *Cpu, fields *isa.Fields) error {
	number := cpu.Register[isa.REG_A7]
	call, ok := syscalls[number]
	if !ok {
		return ErrSyscall(number)
	}

	if cpu.Verbose {
		log.Printf("cpu: syscall %d", number)
	}

	return call(cpu, fields)
}

func waitFor(kind InputKind) handler {
	return func(cpu *Cpu, _ *isa.Fields) error {
		cpu.input = cpu.Register[isa.REG_A7]
		cpu.state = Waiting(kind)
		return nil
	}
}

func (cpu *Cpu) print(format string, args ...any) (err error) {
	_, err = fmt.Fprintf(cpu.Output, format, args...)
	return
}

// cstring reads a NUL terminated string at addr.
func (cpu *Cpu) cstring(addr uint32) string {
	var text []byte
	for len(text) < STRING_LIMIT {
		ch := cpu.Memory.Read(addr)
		if ch == 0 {
			break
		}
		text = append(text, ch)
		addr++
	}
	return string(text)
}

// Resume supplies the value an input syscall waits for, and returns the
// CPU to the running state. Integers accept a sign and a 0x, 0o or 0b
// prefix, characters are the first rune of input, and strings are
// stored NUL terminated in the a0 buffer of a1 bytes, truncated to fit.
// The write is undone with the ecall that requested it. A pending Stop
// is applied instead, and the input refused.
func (cpu *Cpu) Resume(input string) (err error) {
	if cpu.stopping() || cpu.state.Kind != STATE_WAITING {
		return ErrNotWaiting
	}

	rec := cpu.history.Top()
	if rec != nil && rec.Pc != cpu.Pc-4 {
		rec = nil
	}
	cpu.record = rec
	defer func() { cpu.record = nil }()

	switch cpu.state.Input {
	case INPUT_INT:
		value, perr := strconv.ParseInt(strings.TrimSpace(input), 0, 64)
		if perr != nil || value < math.MinInt32 || value > math.MaxUint32 {
			return ErrInput(input)
		}
		cpu.setRegister(uint32(isa.REG_A0), uint32(value))
	case INPUT_CHAR:
		ch, size := utf8.DecodeRuneInString(input)
		if size == 0 || ch == utf8.RuneError {
			return ErrInput(input)
		}
		cpu.setRegister(uint32(isa.REG_A0), uint32(ch))
	case INPUT_STRING:
		size := int32(cpu.Register[isa.REG_A1])
		if size > 0 {
			data := []byte(input)
			if len(data) > int(size)-1 {
				data = data[:size-1]
			}
			cpu.setMemory(cpu.Register[isa.REG_A0], append(data, 0))
		}
	}

	if cpu.Verbose {
		log.Printf("cpu: syscall %d input %q", cpu.input, input)
	}

	cpu.input = 0
	cpu.state = Running()
	return
}
