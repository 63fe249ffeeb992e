package cpu

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/ezrec/rvasm/assembler"
	"github.com/ezrec/rvasm/config"
	"github.com/ezrec/rvasm/isa"
	"github.com/ezrec/rvasm/memory"
)

// Cpu is the simulation context of one RV32I hart.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Config *config.Config // Memory layout.

	Pc       uint32                     // Program counter.
	Register [isa.REGISTER_COUNT]uint32 // Register file; x0 is always zero.
	Memory   *memory.Memory             // Address space.
	Output   io.Writer                  // Destination of syscall output.

	Ticks int // Instructions executed since reset.

	image   *assembler.Result
	textEnd uint32

	state  State
	fault  error
	input  uint32 // Syscall waiting for input.
	next   uint32 // Program counter after the executing instruction.
	record *Record

	history     History
	breakpoints map[uint32]struct{}

	interrupt atomic.Bool
	stop      atomic.Bool
}

// NewCpu creates a CPU for a memory layout, config.Default() when nil.
func NewCpu(cfg *config.Config) (cpu *Cpu) {
	if cfg == nil {
		cfg = config.Default()
	}

	cpu = &Cpu{
		Config:      cfg,
		Memory:      &memory.Memory{},
		Output:      io.Discard,
		breakpoints: map[uint32]struct{}{},
	}
	cpu.Reset()

	return
}

// Defines for the cpu: the syscall service numbers.
func (cpu *Cpu) Defines() iter.Seq2[string, int64] {
	return maps.All(_syscall_defines)
}

// Load installs an assembled program and resets the CPU.
func (cpu *Cpu) Load(res *assembler.Result) {
	if res == nil {
		res = &assembler.Result{}
	}
	cpu.image = res
	cpu.Reset()
}

// Reset restores the loaded program and the initial register state.
// Breakpoints are kept.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cfg := cpu.Config

	cpu.Memory.Reset()
	cpu.textEnd = cfg.TextBase
	if cpu.image != nil {
		for _, inst := range cpu.image.Instructions {
			cpu.Memory.Write32(inst.Address, inst.Word)
			if inst.Address+4 > cpu.textEnd {
				cpu.textEnd = inst.Address + 4
			}
		}
		cpu.Memory.SetRange(cfg.DataBase, cpu.image.Data)
	}

	clear(cpu.Register[:])
	cpu.Register[isa.REG_SP] = cfg.StackPointer
	cpu.Register[isa.REG_GP] = cfg.GlobalPointer
	cpu.Pc = cfg.TextBase
	cpu.Ticks = 0

	cpu.state = Running()
	cpu.fault = nil
	cpu.input = 0
	cpu.record = nil
	cpu.history = History{Limit: cfg.HistoryLimit}
	cpu.interrupt.Store(false)
	cpu.stop.Store(false)
}

// State is the state after the last cycle.
func (cpu *Cpu) State() State {
	return cpu.state
}

// Fault is the fault that stopped the CPU, or nil.
func (cpu *Cpu) Fault() error {
	return cpu.fault
}

// TextEnd is the address after the last loaded instruction.
func (cpu *Cpu) TextEnd() uint32 {
	return cpu.textEnd
}

// SetRegister sets a general purpose register. Writes to x0 are ignored.
func (cpu *Cpu) SetRegister(reg isa.Register, value uint32) {
	if reg == isa.REG_ZERO || !reg.Valid() {
		return
	}
	cpu.Register[reg] = value
}

// SetBreakpoint pauses Run before the instruction at addr executes.
func (cpu *Cpu) SetBreakpoint(addr uint32) {
	cpu.breakpoints[addr] = struct{}{}
}

// RemoveBreakpoint removes the breakpoint at addr, if any.
func (cpu *Cpu) RemoveBreakpoint(addr uint32) {
	delete(cpu.breakpoints, addr)
}

// Breakpoints are the breakpoint addresses, in ascending order.
func (cpu *Cpu) Breakpoints() []uint32 {
	return slices.Sorted(maps.Keys(cpu.breakpoints))
}

// Interrupt requests a pause at the next cycle boundary. It is safe to
// call from another goroutine.
func (cpu *Cpu) Interrupt() {
	cpu.interrupt.Store(true)
}

// Stop requests the program end at the next cycle boundary, with exit
// code EXIT_STOPPED. It is safe to call from another goroutine.
func (cpu *Cpu) Stop() {
	cpu.stop.Store(true)
}

// stopping applies a pending Stop, whatever the state. A program that
// already stopped keeps its exit code.
func (cpu *Cpu) stopping() bool {
	if !cpu.stop.Swap(false) {
		return false
	}

	cpu.interrupt.Store(false)
	if cpu.state.Kind != STATE_STOPPED {
		cpu.state = Stopped(EXIT_STOPPED)
		cpu.fault = nil
		cpu.input = 0
	}
	return true
}

// requested applies a pending Stop or Interrupt.
func (cpu *Cpu) requested() bool {
	if cpu.stopping() {
		return true
	}

	if cpu.interrupt.Swap(false) {
		cpu.state = Paused(PAUSE_INTERRUPT)
		return true
	}

	return false
}

// Step executes one fetch-decode-execute cycle. A stopped or faulted
// CPU, or one waiting for input, does not execute, though a pending Stop
// still applies. The only error returned is an *ErrFault.
func (cpu *Cpu) Step() (state State, err error) {
	if cpu.stopping() {
		return cpu.state, nil
	}

	switch cpu.state.Kind {
	case STATE_STOPPED, STATE_WAITING:
		return cpu.state, nil
	case STATE_FAULT:
		return cpu.state, cpu.fault
	}

	if !cpu.requested() {
		err = cpu.cycle()
	}

	state = cpu.state
	return
}

func (cpu *Cpu) cycle() (err error) {
	pc := cpu.Pc
	if pc == cpu.textEnd {
		if cpu.Verbose {
			log.Printf("cpu: end of text at 0x%08x", pc)
		}
		cpu.state = Stopped(0)
		return
	}

	rec := Record{Pc: pc, State: cpu.state}
	cpu.record = &rec
	cpu.next = pc + 4
	cpu.state = Running()

	err = cpu.execute(pc)
	cpu.Register[isa.REG_ZERO] = 0
	cpu.record = nil

	if err != nil {
		if cpu.Verbose {
			log.Printf("cpu: 0x%08x: %v", pc, err)
		}
		cpu.state = Faulted()
		cpu.fault = &ErrFault{Pc: pc, Err: err}
		err = cpu.fault
		return
	}

	cpu.history.Push(rec)
	cpu.Pc = cpu.next
	cpu.Ticks++

	return
}

// execute runs the instruction at pc.
func (cpu *Cpu) execute(pc uint32) (err error) {
	if pc < cpu.Config.TextBase || pc >= cpu.textEnd {
		return ErrFetchBounds
	}
	if pc&3 != 0 {
		return ErrJumpTarget
	}

	word := cpu.Memory.Read32(pc)
	inst, err := isa.Decode(word)
	if err != nil {
		return ErrInstruction(word)
	}

	if cpu.Verbose {
		log.Printf("cpu: 0x%08x: %v", pc, inst)
	}

	fields := isa.DecodeFields(inst.Op.Format(), word)

	exec := handlers[inst.Op]
	if exec == nil {
		return ErrOperator(inst.Op)
	}

	return exec(cpu, &fields)
}

// Run steps until the program stops, faults, pauses or waits for input,
// or until ctx is done, which pauses with PAUSE_INTERRUPT. A breakpoint
// is checked before the instruction at its address executes, except on
// the instruction a breakpoint pause resumes from. The only error
// returned is an *ErrFault.
func (cpu *Cpu) Run(ctx context.Context) (state State, err error) {
	if cpu.stopping() {
		return cpu.state, nil
	}

	if cpu.state.Done() || cpu.state.Kind == STATE_WAITING {
		return cpu.Step()
	}

	resumed := cpu.state.Kind == STATE_PAUSED && cpu.state.Pause == PAUSE_BREAKPOINT

	for first := true; ; first = false {
		if ctx.Err() != nil {
			cpu.state = Paused(PAUSE_INTERRUPT)
			return cpu.state, nil
		}

		if !first || !resumed {
			if _, ok := cpu.breakpoints[cpu.Pc]; ok {
				if cpu.Verbose {
					log.Printf("cpu: breakpoint at 0x%08x", cpu.Pc)
				}
				cpu.state = Paused(PAUSE_BREAKPOINT)
				return cpu.state, nil
			}
		}

		state, err = cpu.Step()
		if err != nil || state.Kind != STATE_RUNNING {
			return
		}
	}
}

// Undo reverts the most recent executed instruction, restoring the
// register or memory it changed, the program counter and the state.
func (cpu *Cpu) Undo() (err error) {
	rec, ok := cpu.history.Pop()
	if !ok {
		return ErrHistoryEmpty
	}

	if cpu.Verbose {
		log.Printf("cpu: undo 0x%08x", rec.Pc)
	}

	if rec.Reg != isa.REG_ZERO {
		cpu.Register[rec.Reg] = rec.RegPrior
	}
	if rec.MemPrior != nil {
		cpu.Memory.SetRange(rec.MemAddr, rec.MemPrior)
	}

	cpu.Pc = rec.Pc
	cpu.state = rec.State
	cpu.fault = nil
	cpu.input = 0
	if cpu.Ticks > 0 {
		cpu.Ticks--
	}

	return
}

// History is the number of instructions Undo can revert.
func (cpu *Cpu) History() int {
	return cpu.history.Len()
}

// setRegister writes rd, recording the prior value.
func (cpu *Cpu) setRegister(rd uint32, value uint32) {
	if rd == 0 {
		return
	}
	if cpu.record != nil && cpu.record.Reg == isa.REG_ZERO {
		cpu.record.Reg = isa.Register(rd)
		cpu.record.RegPrior = cpu.Register[rd]
	}
	cpu.Register[rd] = value
}

// setMemory writes data at addr, recording the prior contents.
func (cpu *Cpu) setMemory(addr uint32, data []byte) {
	if cpu.record != nil && cpu.record.MemPrior == nil {
		prior := make([]byte, len(data))
		cpu.Memory.GetRange(addr, prior)
		cpu.record.MemAddr = addr
		cpu.record.MemPrior = prior
	}
	cpu.Memory.SetRange(addr, data)
}

// jump transfers control to target.
func (cpu *Cpu) jump(target uint32) error {
	if target&3 != 0 {
		return ErrJumpTarget
	}
	cpu.next = target
	return nil
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("% 5s: %04x_%04x\n", "pc", cpu.Pc>>16, cpu.Pc&0xffff)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %04x_%04x\n", isa.Register(n), val>>16, val&0xffff)
	}
	text += fmt.Sprintf("% 5s: %v\n", "state", cpu.state)

	return
}
