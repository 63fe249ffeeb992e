package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvasm/assembler"
	"github.com/ezrec/rvasm/isa"
)

func FuzzStep(f *testing.F) {
	for _, word := range []uint32{
		0x00000013, 0x00150513, 0x00c584b3, 0x00112623, 0x00c12083,
		0x00000073, 0x00100073, 0x003170d3, 0xc0002573, 0xffffffff,
	} {
		f.Add(word, uint32(0), uint32(0))
		f.Add(word, uint32(0x10010000), uint32(SYSCALL_PRINT_INT))
	}

	f.Fuzz(func(t *testing.T, word uint32, value uint32, a7 uint32) {
		assert := assert.New(t)

		cpu := NewCpu(nil)
		cpu.Load(&assembler.Result{
			Instructions: []assembler.Instruction{{Address: textBase, Word: word}},
		})
		for reg := range isa.REGISTER_COUNT {
			cpu.SetRegister(isa.Register(reg), value)
		}
		cpu.SetRegister(isa.REG_A7, a7)

		state, err := cpu.Step()
		assert.Equal(uint32(0), cpu.Register[isa.REG_ZERO])

		if err != nil {
			var fault *ErrFault
			assert.True(errors.As(err, &fault))
			assert.Equal(uint32(textBase), fault.Pc)
			assert.Equal(Faulted(), state)
			assert.Equal(0, cpu.History())
			return
		}

		assert.Equal(1, cpu.History())
		assert.NoError(cpu.Undo())
		assert.Equal(uint32(textBase), cpu.Pc)
		for reg := 1; reg < isa.REGISTER_COUNT; reg++ {
			want := value
			if isa.Register(reg) == isa.REG_A7 {
				want = a7
			}
			assert.Equal(want, cpu.Register[reg])
		}
	})
}
