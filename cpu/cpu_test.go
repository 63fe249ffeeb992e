package cpu

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvasm/assembler"
	"github.com/ezrec/rvasm/config"
	"github.com/ezrec/rvasm/isa"
	"github.com/ezrec/rvasm/parser"
)

const textBase = config.TEXT_BASE

func assemble(t *testing.T, source string) *assembler.Result {
	t.Helper()

	pr, err := parser.Parse(source)
	assert.NoError(t, err)

	res, err := (&assembler.Assembler{}).Assemble(pr)
	assert.NoError(t, err)

	return res
}

func build(t *testing.T, source string) (cpu *Cpu) {
	t.Helper()

	cpu = NewCpu(nil)
	cpu.Load(assemble(t, source))
	return
}

func TestRun_Ebreak(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, `
addi a1, zero, 19
addi a2, zero, 5
add s1, a1, a2
ebreak
`)

	state, err := cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Paused(PAUSE_EBREAK), state)
	assert.Equal(uint32(24), cpu.Register[isa.REG_S1])
	assert.Equal(uint32(textBase+16), cpu.Pc)
	assert.Equal(4, cpu.Ticks)

	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(0), state)
}

func TestStep(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, "addi a0, zero, 1\naddi a0, a0, 2\n")
	assert.Equal(uint32(textBase), cpu.Pc)
	assert.Equal(uint32(textBase+8), cpu.TextEnd())

	state, err := cpu.Step()
	assert.NoError(err)
	assert.Equal(Running(), state)
	assert.Equal(uint32(1), cpu.Register[isa.REG_A0])
	assert.Equal(uint32(textBase+4), cpu.Pc)

	state, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(Running(), state)
	assert.Equal(uint32(3), cpu.Register[isa.REG_A0])

	// Falling off the end of the text stops the program.
	state, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(Stopped(0), state)

	state, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(Stopped(0), state)
	assert.Equal(2, cpu.Ticks)
}

func TestExecute(t *testing.T) {
	table := [](struct {
		name   string
		source string
		reg    isa.Register
		value  uint32
	}){
		{"lui", "lui a0, 0x12345", isa.REG_A0, 0x12345000},
		{"auipc", "nop\nauipc a0, 1", isa.REG_A0, textBase + 4 + 0x1000},
		{"li", "li a0, 0x12345678", isa.REG_A0, 0x12345678},
		{"li_neg", "li a0, -2048", isa.REG_A0, 0xfffff800},
		{"sub", "li a0, 5\nli a1, 7\nsub a2, a0, a1", isa.REG_A2, 0xfffffffe},
		{"xor", "li a0, 0xf0\nli a1, 0x3c\nxor a2, a0, a1", isa.REG_A2, 0xcc},
		{"and", "li a0, 0xf0\nli a1, 0x3c\nand a2, a0, a1", isa.REG_A2, 0x30},
		{"or", "li a0, 0xf0\nli a1, 0x3c\nor a2, a0, a1", isa.REG_A2, 0xfc},
		{"xori", "li a0, 0xf0\nxori a1, a0, -1", isa.REG_A1, 0xffffff0f},
		{"andi", "li a0, 0xf0\nandi a1, a0, 0x3c", isa.REG_A1, 0x30},
		{"ori", "li a0, 0xf0\nori a1, a0, 0x3c", isa.REG_A1, 0xfc},
		{"slli", "li a0, 3\nslli a1, a0, 4", isa.REG_A1, 48},
		{"srli", "li a0, -8\nsrli a1, a0, 28", isa.REG_A1, 0xf},
		{"srai", "li a0, -8\nsrai a1, a0, 1", isa.REG_A1, 0xfffffffc},
		{"sll_mask", "li a0, 1\nli a1, 33\nsll a2, a0, a1", isa.REG_A2, 2},
		{"srl", "li a0, -1\nli a1, 31\nsrl a2, a0, a1", isa.REG_A2, 1},
		{"sra", "li a0, -1\nli a1, 31\nsra a2, a0, a1", isa.REG_A2, 0xffffffff},
		{"slt", "li a0, -1\nli a1, 1\nslt a2, a0, a1", isa.REG_A2, 1},
		{"sltu", "li a0, -1\nli a1, 1\nsltu a2, a0, a1", isa.REG_A2, 0},
		{"slti", "li a0, -1\nslti a1, a0, 0", isa.REG_A1, 1},
		{"sltiu", "li a0, -1\nsltiu a1, a0, 1", isa.REG_A1, 0},
		{"seqz", "seqz a0, zero", isa.REG_A0, 1},
		{"neg", "li a0, 9\nneg a1, a0", isa.REG_A1, 0xfffffff7},
		{"not", "not a0, zero", isa.REG_A0, 0xffffffff},
		{"x0", "addi zero, zero, 5\nmv a0, zero", isa.REG_ZERO, 0},
		{"fence", "li a0, 1\nfence", isa.REG_A0, 1},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			cpu := build(t, entry.source)
			state, err := cpu.Run(context.Background())
			assert.NoError(err)
			assert.Equal(Stopped(0), state)
			assert.Equal(entry.value, cpu.Register[entry.reg])
		})
	}
}

func TestControlFlow(t *testing.T) {
	table := [](struct {
		name   string
		source string
		reg    isa.Register
		value  uint32
	}){
		{"loop", `
li a0, 0
li a1, 3
loop:
addi a0, a0, 2
addi a1, a1, -1
bnez a1, loop
`, isa.REG_A0, 6},
		{"call", `
call fn
li a7, 10
ecall
fn:
li a0, 42
ret
`, isa.REG_A0, 42},
		{"link", `
jal skip
skip:
mv a0, ra
`, isa.REG_A0, textBase + 4},
		{"jalr_link", `
la t0, target
jalr a0, 0(t0)
target:
nop
`, isa.REG_A0, textBase + 12},
		{"blt", `
li a0, -1
li a1, 1
blt a0, a1, taken
li a2, 1
taken:
li a3, 1
`, isa.REG_A2, 0},
		{"bltu", `
li a0, -1
li a1, 1
bltu a0, a1, taken
li a2, 1
taken:
li a3, 1
`, isa.REG_A2, 1},
		{"bge", `
li a0, 5
bge a0, a0, taken
li a2, 1
taken:
`, isa.REG_A2, 0},
		{"bgeu", `
li a0, 1
li a1, -1
bgeu a0, a1, taken
li a2, 1
taken:
`, isa.REG_A2, 1},
		{"beq_back", `
li a0, 2
top:
addi a0, a0, -1
beq a0, zero, done
j top
done:
li a1, 7
`, isa.REG_A1, 7},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			cpu := build(t, entry.source)
			state, err := cpu.Run(context.Background())
			assert.NoError(err)
			assert.Equal(Stopped(0), state)
			assert.Equal(entry.value, cpu.Register[entry.reg])
		})
	}
}

func TestLoadStore(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, `
.data
buf:
.word 0
.word 0x11223344
.text
la t0, buf
li t1, -2
sb t1, 0(t0)
lb a0, 0(t0)
lbu a1, 0(t0)
li t1, 0x8001
sh t1, 2(t0)
lh a2, 2(t0)
lhu a3, 2(t0)
lw a4, 0(t0)
lw a5, 4(t0)
`)

	state, err := cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(0), state)

	assert.Equal(uint32(0xfffffffe), cpu.Register[isa.REG_A0])
	assert.Equal(uint32(0xfe), cpu.Register[isa.REG_A1])
	assert.Equal(uint32(0xffff8001), cpu.Register[isa.REG_A2])
	assert.Equal(uint32(0x8001), cpu.Register[isa.REG_A3])
	assert.Equal(uint32(0x800100fe), cpu.Register[isa.REG_A4])
	assert.Equal(uint32(0x11223344), cpu.Register[isa.REG_A5])
	assert.Equal(uint32(0x800100fe), cpu.Memory.Read32(config.DATA_BASE))
}

func TestFault(t *testing.T) {
	table := [](struct {
		name   string
		source string
		cause  error
		pc     uint32
	}){
		{"misaligned_load", "nop\nlw a0, 1(zero)", ErrMisaligned, textBase + 4},
		{"misaligned_store", "li t0, 2\nsw zero, 0(t0)", ErrMisaligned, textBase + 4},
		{"jump_target", "li t0, 2\njr t0", ErrJumpTarget, textBase + 4},
		{"fetch_bounds", "jr zero", ErrFetchBounds, 0},
		{"syscall", "li a7, 999\necall", ErrSyscallUnknown, textBase + 4},
		{"unsupported_f", "fadd.s f1, f2, f3", ErrUnsupported, textBase},
		{"unsupported_csr", "csrr a0, cycle", ErrUnsupported, textBase},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			cpu := build(t, entry.source)
			state, err := cpu.Run(context.Background())
			assert.Equal(Faulted(), state)
			assert.ErrorIs(err, entry.cause)

			var fault *ErrFault
			if assert.ErrorAs(err, &fault) {
				assert.Equal(entry.pc, fault.Pc)
			}
			assert.Equal(err, cpu.Fault())

			// A faulted CPU stays faulted.
			state, err2 := cpu.Step()
			assert.Equal(Faulted(), state)
			assert.Equal(err, err2)
		})
	}
}

func TestFault_Opcode(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil)
	cpu.Load(&assembler.Result{
		Instructions: []assembler.Instruction{
			{Address: textBase, Word: 0xffffffff},
		},
	})

	state, err := cpu.Step()
	assert.Equal(Faulted(), state)
	assert.ErrorIs(err, ErrOpcodeUnknown)
	assert.True(errors.Is(err, ErrOpcodeUnknown))
	assert.Equal(uint32(textBase), cpu.Pc)
}

func TestSyscall_Output(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, `
.data
msg:
.asciz "hi "
.text
li a0, -5
li a7, 1
ecall
la a0, msg
li a7, 4
ecall
li a0, 31
li a7, 34
ecall
li a0, 'A'
li a7, 11
ecall
li a0, 0xc3
ecall
li a0, 0x1a9
ecall
li a0, 5
li a7, 35
ecall
li a0, -1
li a7, 36
ecall
li a0, 3
li a7, 93
ecall
li a0, 4
`)
	var out bytes.Buffer
	cpu.Output = &out

	state, err := cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(3), state)
	assert.Equal("-5hi 0x0000001fA\xc3\xa90b000000000000000000000000000001014294967295", out.String())
	assert.Equal(uint32(3), cpu.Register[isa.REG_A0])
}

func TestSyscall_Input(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, `
li a7, 5
ecall
mv s0, a0
li a7, 12
ecall
mv s1, a0
la a0, buf
li a1, 4
li a7, 8
ecall
li a0, 3
li a7, 93
ecall
.data
buf:
.space 8
`)

	assert.ErrorIs(cpu.Resume("1"), ErrNotWaiting)

	state, err := cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Waiting(INPUT_INT), state)

	// Waiting does not execute.
	state, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(Waiting(INPUT_INT), state)

	assert.ErrorIs(cpu.Resume("nope"), ErrInputInvalid)
	assert.ErrorIs(cpu.Resume("0x100000000"), ErrInputInvalid)
	assert.Equal(Waiting(INPUT_INT), cpu.State())
	assert.NoError(cpu.Resume(" -0x10\n"))
	assert.Equal(Running(), cpu.State())

	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Waiting(INPUT_CHAR), state)
	assert.ErrorIs(cpu.Resume(""), ErrInputInvalid)
	assert.NoError(cpu.Resume("xyz"))

	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Waiting(INPUT_STRING), state)
	assert.NoError(cpu.Resume("hello"))

	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(3), state)

	assert.Equal(uint32(0xfffffff0), cpu.Register[isa.REG_S0])
	assert.Equal(uint32('x'), cpu.Register[isa.REG_S1])

	buf := make([]byte, 5)
	cpu.Memory.GetRange(config.DATA_BASE, buf)
	assert.Equal([]byte("hel\x00\x00"), buf)
}

func TestUndo(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, "li a0, 5\nsw a0, 0(sp)\naddi a0, a0, 1\n")
	sp := cpu.Register[isa.REG_SP]

	state, err := cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(0), state)
	assert.Equal(uint32(6), cpu.Register[isa.REG_A0])
	assert.Equal(uint32(5), cpu.Memory.Read32(sp))
	assert.Equal(3, cpu.History())

	assert.NoError(cpu.Undo())
	assert.Equal(Running(), cpu.State())
	assert.Equal(uint32(textBase+8), cpu.Pc)
	assert.Equal(uint32(5), cpu.Register[isa.REG_A0])

	assert.NoError(cpu.Undo())
	assert.Equal(uint32(textBase+4), cpu.Pc)
	assert.Equal(uint32(0), cpu.Memory.Read32(sp))

	assert.NoError(cpu.Undo())
	assert.Equal(uint32(textBase), cpu.Pc)
	assert.Equal(uint32(0), cpu.Register[isa.REG_A0])
	assert.Equal(0, cpu.Ticks)

	assert.ErrorIs(cpu.Undo(), ErrHistoryEmpty)

	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(0), state)
	assert.Equal(uint32(6), cpu.Register[isa.REG_A0])
}

func TestUndo_Input(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, "li a7, 5\necall\n")

	state, _ := cpu.Run(context.Background())
	assert.Equal(Waiting(INPUT_INT), state)
	assert.NoError(cpu.Resume("7"))
	assert.Equal(uint32(7), cpu.Register[isa.REG_A0])

	assert.NoError(cpu.Undo())
	assert.Equal(uint32(0), cpu.Register[isa.REG_A0])
	assert.Equal(uint32(textBase+4), cpu.Pc)

	state, err := cpu.Step()
	assert.NoError(err)
	assert.Equal(Waiting(INPUT_INT), state)
}

func TestUndo_Fault(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, "li a0, 1\nlw a1, 1(zero)\n")

	state, err := cpu.Run(context.Background())
	assert.Equal(Faulted(), state)
	assert.Error(err)

	assert.NoError(cpu.Undo())
	assert.Nil(cpu.Fault())
	assert.Equal(Running(), cpu.State())
	assert.Equal(uint32(textBase), cpu.Pc)
	assert.Equal(uint32(0), cpu.Register[isa.REG_A0])
}

func TestHistory_Limit(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.HistoryLimit = 2

	cpu := NewCpu(cfg)
	cpu.Load(assemble(t, "li a0, 1\nli a0, 2\nli a0, 3\n"))

	_, err := cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(2, cpu.History())

	assert.NoError(cpu.Undo())
	assert.Equal(uint32(2), cpu.Register[isa.REG_A0])
	assert.NoError(cpu.Undo())
	assert.Equal(uint32(1), cpu.Register[isa.REG_A0])
	assert.Equal(uint32(textBase+4), cpu.Pc)
	assert.ErrorIs(cpu.Undo(), ErrHistoryEmpty)
}

func TestBreakpoint(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, "li a0, 1\nli a0, 2\nli a0, 3\n")
	cpu.SetBreakpoint(textBase + 8)
	cpu.SetBreakpoint(textBase + 4)
	assert.Equal([]uint32{textBase + 4, textBase + 8}, cpu.Breakpoints())

	state, err := cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Paused(PAUSE_BREAKPOINT), state)
	assert.Equal(uint32(textBase+4), cpu.Pc)
	assert.Equal(uint32(1), cpu.Register[isa.REG_A0])

	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Paused(PAUSE_BREAKPOINT), state)
	assert.Equal(uint32(textBase+8), cpu.Pc)
	assert.Equal(uint32(2), cpu.Register[isa.REG_A0])

	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(0), state)
	assert.Equal(uint32(3), cpu.Register[isa.REG_A0])

	// Breakpoints survive a reset.
	cpu.Reset()
	cpu.RemoveBreakpoint(textBase + 8)
	cpu.SetBreakpoint(textBase)
	assert.Equal([]uint32{textBase, textBase + 4}, cpu.Breakpoints())

	state, _ = cpu.Run(context.Background())
	assert.Equal(Paused(PAUSE_BREAKPOINT), state)
	assert.Equal(uint32(textBase), cpu.Pc)

	state, _ = cpu.Run(context.Background())
	assert.Equal(Paused(PAUSE_BREAKPOINT), state)
	assert.Equal(uint32(textBase+4), cpu.Pc)

	state, _ = cpu.Run(context.Background())
	assert.Equal(Stopped(0), state)
}

func TestStop_Waiting(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, `
li a7, 5
ecall
li a0, 3
li a7, 93
ecall
`)

	state, err := cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Waiting(INPUT_INT), state)

	cpu.Stop()
	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(EXIT_STOPPED), state)
	assert.Equal(Stopped(EXIT_STOPPED), cpu.State())
	assert.ErrorIs(cpu.Resume("1"), ErrNotWaiting)

	// Stop pending while the input is answered.
	cpu.Reset()
	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Waiting(INPUT_INT), state)

	cpu.Stop()
	assert.ErrorIs(cpu.Resume("1"), ErrNotWaiting)
	assert.Equal(Stopped(EXIT_STOPPED), cpu.State())

	state, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(Stopped(EXIT_STOPPED), state)
	assert.Equal(uint32(SYSCALL_READ_INT), cpu.Register[isa.REG_A7])

	// A stopped program keeps its exit code.
	cpu.Reset()
	_, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.NoError(cpu.Resume("1"))
	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(3), state)

	cpu.Stop()
	state, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(Stopped(3), state)
}

func TestRun_Interrupt(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, "loop:\nj loop\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	state, err := cpu.Run(ctx)
	assert.NoError(err)
	assert.Equal(Paused(PAUSE_INTERRUPT), state)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	state, err = cpu.Run(ctx)
	assert.NoError(err)
	assert.Equal(Paused(PAUSE_INTERRUPT), state)
	assert.Equal(uint32(textBase), cpu.Pc)
	assert.Greater(cpu.Ticks, 0)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cpu.Interrupt()
	}()
	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Paused(PAUSE_INTERRUPT), state)

	cpu.Stop()
	state, err = cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(Stopped(EXIT_STOPPED), state)
	assert.True(state.Done())
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	cpu := build(t, `
.data
value:
.word 9
.text
la t0, value
sw zero, 0(t0)
li s0, 1
`)
	assert.Equal(uint32(config.STACK_POINTER), cpu.Register[isa.REG_SP])
	assert.Equal(uint32(config.GLOBAL_POINTER), cpu.Register[isa.REG_GP])
	assert.Equal(uint32(9), cpu.Memory.Read32(config.DATA_BASE))

	_, err := cpu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(uint32(0), cpu.Memory.Read32(config.DATA_BASE))
	assert.Equal(uint32(1), cpu.Register[isa.REG_S0])

	cpu.Reset()
	assert.Equal(uint32(9), cpu.Memory.Read32(config.DATA_BASE))
	assert.Equal(uint32(0), cpu.Register[isa.REG_S0])
	assert.Equal(uint32(textBase), cpu.Pc)
	assert.Equal(Running(), cpu.State())
	assert.Equal(0, cpu.History())
}

func TestSetRegister(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil)
	cpu.SetRegister(isa.REG_ZERO, 5)
	cpu.SetRegister(isa.REG_A0, 5)
	cpu.SetRegister(isa.Register(40), 5)
	assert.Equal(uint32(0), cpu.Register[isa.REG_ZERO])
	assert.Equal(uint32(5), cpu.Register[isa.REG_A0])

	// An empty program stops immediately.
	state, err := cpu.Step()
	assert.NoError(err)
	assert.Equal(Stopped(0), state)
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	defines := maps.Collect(NewCpu(nil).Defines())
	assert.Equal(int64(10), defines["SYSCALL_EXIT"])
	assert.Equal(int64(93), defines["SYSCALL_EXIT_CODE"])
	assert.Len(defines, 11)
}

func TestState_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("running", Running().String())
	assert.Equal("paused (ebreak)", Paused(PAUSE_EBREAK).String())
	assert.Equal("waiting for input (char)", Waiting(INPUT_CHAR).String())
	assert.Equal("stopped (exit 3)", Stopped(3).String())
	assert.Equal("fault", Faulted().String())
}
