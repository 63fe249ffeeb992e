package cpu

import (
	"encoding/binary"

	"github.com/ezrec/rvasm/isa"
)

// handler executes one decoded instruction.
type handler func(cpu *Cpu, fields *isa.Fields) error

// handlers by operator. Operators without a handler assemble, but
// fault with ErrUnsupported.
var handlers [isa.OP_COUNT]handler

func init() {
	handlers = [isa.OP_COUNT]handler{
		isa.OP_LUI:   lui,
		isa.OP_AUIPC: auipc,
		isa.OP_JAL:   jal,
		isa.OP_JALR:  jalr,

		isa.OP_BEQ:  branch(func(a, b uint32) bool { return a == b }),
		isa.OP_BNE:  branch(func(a, b uint32) bool { return a != b }),
		isa.OP_BLT:  branch(func(a, b uint32) bool { return int32(a) < int32(b) }),
		isa.OP_BGE:  branch(func(a, b uint32) bool { return int32(a) >= int32(b) }),
		isa.OP_BLTU: branch(func(a, b uint32) bool { return a < b }),
		isa.OP_BGEU: branch(func(a, b uint32) bool { return a >= b }),

		isa.OP_LB:  load(1, true),
		isa.OP_LH:  load(2, true),
		isa.OP_LW:  load(4, false),
		isa.OP_LBU: load(1, false),
		isa.OP_LHU: load(2, false),
		isa.OP_SB:  store(1),
		isa.OP_SH:  store(2),
		isa.OP_SW:  store(4),

		isa.OP_ADDI:  immediate(add),
		isa.OP_SLTI:  immediate(slt),
		isa.OP_SLTIU: immediate(sltu),
		isa.OP_XORI:  immediate(xor),
		isa.OP_ORI:   immediate(or),
		isa.OP_ANDI:  immediate(and),
		isa.OP_SLLI:  immediate(sll),
		isa.OP_SRLI:  immediate(srl),
		isa.OP_SRAI:  immediate(sra),

		isa.OP_ADD:  register(add),
		isa.OP_SUB:  register(sub),
		isa.OP_SLL:  register(sll),
		isa.OP_SLT:  register(slt),
		isa.OP_SLTU: register(sltu),
		isa.OP_XOR:  register(xor),
		isa.OP_SRL:  register(srl),
		isa.OP_SRA:  register(sra),
		isa.OP_OR:   register(or),
		isa.OP_AND:  register(and),

		isa.OP_FENCE:  fence,
		isa.OP_ECALL:  ecall,
		isa.OP_EBREAK: ebreak,
	}
}

func add(a, b uint32) uint32 { return a + b }
func sub(a, b uint32) uint32 { return a - b }
func xor(a, b uint32) uint32 { return a ^ b }
func or(a, b uint32) uint32 { return a | b }
func and(a, b uint32) uint32 { return a & b }
func sll(a, b uint32) uint32 { return a << (b & 0x1f) }
func srl(a, b uint32) uint32 { return a >> (b & 0x1f) }
func sra(a, b uint32) uint32 { return uint32(int32(a) >> (b & 0x1f)) }

func slt(a, b uint32) uint32 {
	if int32(a) < int32(b) {
		return 1
	}
	return 0
}

func sltu(a, b uint32) uint32 {
	if a < b {
		return 1
	}
	return 0
}

// register is an R-type ALU operation: rd = op(rs1, rs2).
func register(op func(a, b uint32) uint32) handler {
	return func(cpu *Cpu, fields *isa.Fields) error {
		cpu.setRegister(fields.Rd, op(cpu.Register[fields.Rs1], cpu.Register[fields.Rs2]))
		return nil
	}
}

// immediate is an I-type ALU operation: rd = op(rs1, imm).
func immediate(op func(a, b uint32) uint32) handler {
	return func(cpu *Cpu, fields *isa.Fields) error {
		cpu.setRegister(fields.Rd, op(cpu.Register[fields.Rs1], uint32(fields.Imm)))
		return nil
	}
}

func lui(cpu *Cpu, fields *isa.Fields) error {
	cpu.setRegister(fields.Rd, uint32(fields.Imm)<<12)
	return nil
}

func auipc(cpu *Cpu, fields *isa.Fields) error {
	cpu.setRegister(fields.Rd, cpu.Pc+uint32(fields.Imm)<<12)
	return nil
}

func jal(cpu *Cpu, fields *isa.Fields) (err error) {
	err = cpu.jump(cpu.Pc + uint32(fields.Imm))
	if err != nil {
		return
	}
	cpu.setRegister(fields.Rd, cpu.Pc+4)
	return
}

func jalr(cpu *Cpu, fields *isa.Fields) (err error) {
	target := (cpu.Register[fields.Rs1] + uint32(fields.Imm)) &^ 1
	err = cpu.jump(target)
	if err != nil {
		return
	}
	cpu.setRegister(fields.Rd, cpu.Pc+4)
	return
}

func branch(cond func(a, b uint32) bool) handler {
	return func(cpu *Cpu, fields *isa.Fields) error {
		if !cond(cpu.Register[fields.Rs1], cpu.Register[fields.Rs2]) {
			return nil
		}
		return cpu.jump(cpu.Pc + uint32(fields.Imm))
	}
}

// address is the effective address of a load or store of size bytes.
func (cpu *Cpu) address(fields *isa.Fields, size uint32) (addr uint32, err error) {
	addr = cpu.Register[fields.Rs1] + uint32(fields.Imm)
	if addr%size != 0 {
		err = ErrMisaligned
	}
	return
}

func load(size uint32, signed bool) handler {
	return func(cpu *Cpu, fields *isa.Fields) error {
		addr, err := cpu.address(fields, size)
		if err != nil {
			return err
		}

		var value uint32
		switch size {
		case 1:
			value = uint32(cpu.Memory.Read(addr))
			if signed {
				value = uint32(int32(int8(value)))
			}
		case 2:
			value = uint32(cpu.Memory.Read16(addr))
			if signed {
				value = uint32(int32(int16(value)))
			}
		default:
			value = cpu.Memory.Read32(addr)
		}

		cpu.setRegister(fields.Rd, value)
		return nil
	}
}

func store(size uint32) handler {
	return func(cpu *Cpu, fields *isa.Fields) error {
		addr, err := cpu.address(fields, size)
		if err != nil {
			return err
		}

		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], cpu.Register[fields.Rs2])
		cpu.setMemory(addr, buf[:size])
		return nil
	}
}

func fence(cpu *Cpu, fields *isa.Fields) error {
	return nil
}

func ebreak(cpu *Cpu, fields *isa.Fields) error {
	cpu.state = Paused(PAUSE_EBREAK)
	return nil
}
