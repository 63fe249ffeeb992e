// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"io"
	"iter"
	"log"
	"maps"
	"sort"

	"github.com/ezrec/rvasm/assembler"
	"github.com/ezrec/rvasm/config"
	"github.com/ezrec/rvasm/cpu"
	"github.com/ezrec/rvasm/internal"
	"github.com/ezrec/rvasm/isa"
	"github.com/ezrec/rvasm/parser"
)

// Console answers the input requests of a running program, and receives
// its output.
type Console interface {
	io.Writer
	Answer(kind cpu.InputKind) (input string, err error)
}

var _emulator_defines = map[string]int64{
	"WORD_SIZE": 4,
}

// Emulator state for one source buffer: parser, assembler and CPU.
type Emulator struct {
	Verbose    bool            // If set, enables verbose logging.
	Config     *config.Config  // Memory layout.
	Extensions []isa.Extension // Enabled extensions; all when empty.
	*cpu.Cpu                   // Reference to the CPU simulation.
	Program    *assembler.Result
	Console    Console // Answers input requests in RunConsole.
}

// NewEmulator creates a new emulator for a memory layout,
// config.Default() when nil.
func NewEmulator(cfg *config.Config) (emu *Emulator) {
	if cfg == nil {
		cfg = config.Default()
	}

	emu = &Emulator{
		Config:  cfg,
		Cpu:     cpu.NewCpu(cfg),
		Program: &assembler.Result{},
	}

	return
}

// Defines returns an iterator over all of the predefined equates: the
// memory layout and the syscall numbers.
func (emu *Emulator) Defines() iter.Seq2[string, int64] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Config.Equates(),
		emu.Cpu.Defines(),
	)
}

func (emu *Emulator) parse(source string) (pr *parser.Result, err error) {
	p := &parser.Parser{
		Extensions: emu.Extensions,
		Verbose:    emu.Verbose,
	}
	p.PredefineAll(emu.Defines())

	return p.Parse(source)
}

// Build parses and assembles source, and loads it into the CPU. On error
// the previously loaded program is kept.
func (emu *Emulator) Build(source string) (err error) {
	pr, err := emu.parse(source)
	if err != nil {
		return
	}

	asm := &assembler.Assembler{
		Config:  emu.Config,
		Verbose: emu.Verbose,
	}
	res, err := asm.Assemble(pr)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: %d instructions, %d data bytes", len(res.Instructions), len(res.Data))
	}

	emu.Program = res
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Load(res)

	return
}

// Dump parses source and returns its machine code as binary strings.
func (emu *Emulator) Dump(source string) (dump *assembler.Dump, err error) {
	pr, err := emu.parse(source)
	if err != nil {
		return
	}

	asm := &assembler.Assembler{
		Config:  emu.Config,
		Verbose: emu.Verbose,
	}
	return asm.Dump(pr)
}

// Reset the program to its initial state.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
}

// lineAt is the source line of the instruction at pc, or 0.
func (emu *Emulator) lineAt(pc uint32) int {
	insts := emu.Program.Instructions
	n := sort.Search(len(insts), func(i int) bool {
		return insts[i].Address >= pc
	})
	if n < len(insts) && insts[n].Address == pc {
		return insts[n].Line
	}

	return 0
}

// LineNo returns the line number of the next instruction to execute.
func (emu *Emulator) LineNo() int {
	return emu.lineAt(emu.Cpu.Pc)
}

// Instruction returns the next instruction to execute.
func (emu *Emulator) Instruction() (inst assembler.Instruction, ok bool) {
	for _, inst = range emu.Program.Instructions {
		if inst.Address == emu.Cpu.Pc {
			ok = true
			return
		}
	}

	inst = assembler.Instruction{}
	return
}

// runtime locates a fault at its source line.
func (emu *Emulator) runtime(err error) error {
	if err == nil {
		return nil
	}

	var fault *cpu.ErrFault
	if errors.As(err, &fault) {
		return &ErrRuntime{LineNo: emu.lineAt(fault.Pc), Err: err}
	}

	return &ErrRuntime{LineNo: emu.LineNo(), Err: err}
}

// Step performs a single instruction of the emulator.
func (emu *Emulator) Step() (state cpu.State, err error) {
	emu.Cpu.Verbose = emu.Verbose

	state, err = emu.Cpu.Step()
	err = emu.runtime(err)
	return
}

// Run the program until it stops, faults, pauses or waits for input.
func (emu *Emulator) Run(ctx context.Context) (state cpu.State, err error) {
	emu.Cpu.Verbose = emu.Verbose

	state, err = emu.Cpu.Run(ctx)
	err = emu.runtime(err)
	return
}

// RunConsole runs the program with its output sent to the Console, and
// answers input requests from it. Invalid input is requested again.
func (emu *Emulator) RunConsole(ctx context.Context) (state cpu.State, err error) {
	if emu.Console == nil {
		err = ErrConsoleMissing
		return
	}

	emu.Cpu.Output = emu.Console

	for {
		state, err = emu.Run(ctx)
		if err != nil || state.Kind != cpu.STATE_WAITING {
			return
		}

		for state.Kind == cpu.STATE_WAITING {
			var input string
			input, err = emu.Console.Answer(state.Input)
			if err != nil {
				err = &ErrRuntime{LineNo: emu.lineAt(emu.Cpu.Pc - 4), Err: err}
				return
			}

			err = emu.Cpu.Resume(input)
			if errors.Is(err, cpu.ErrNotWaiting) {
				// Stopped while the console was answering.
				err = nil
				break
			}
			if errors.Is(err, cpu.ErrInputInvalid) {
				if emu.Verbose {
					log.Printf("emulator: %v", err)
				}
				continue
			}
			if err != nil {
				return
			}
			state = emu.Cpu.State()
		}
	}
}
