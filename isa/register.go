package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// Register is an index into the general purpose or floating point
// register file.
type Register uint8

// REGISTER_COUNT is the size of each register file.
const REGISTER_COUNT = 32

// General purpose registers, by ABI name.
const (
	REG_ZERO = Register(0)
	REG_RA   = Register(1)
	REG_SP   = Register(2)
	REG_GP   = Register(3)
	REG_TP   = Register(4)
	REG_T0   = Register(5)
	REG_T1   = Register(6)
	REG_T2   = Register(7)
	REG_S0   = Register(8)
	REG_S1   = Register(9)
	REG_A0   = Register(10)
	REG_A1   = Register(11)
	REG_A2   = Register(12)
	REG_A3   = Register(13)
	REG_A4   = Register(14)
	REG_A5   = Register(15)
	REG_A6   = Register(16)
	REG_A7   = Register(17)
	REG_S2   = Register(18)
	REG_S3   = Register(19)
	REG_S4   = Register(20)
	REG_S5   = Register(21)
	REG_S6   = Register(22)
	REG_S7   = Register(23)
	REG_S8   = Register(24)
	REG_S9   = Register(25)
	REG_S10  = Register(26)
	REG_S11  = Register(27)
	REG_T3   = Register(28)
	REG_T4   = Register(29)
	REG_T5   = Register(30)
	REG_T6   = Register(31)
)

var xNames = [REGISTER_COUNT]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var fNames = [REGISTER_COUNT]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
	"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
	"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
}

// xMap and fMap map every accepted spelling to its register.
var xMap, fMap = registerMap("x", xNames, "fp", REG_S0), registerMap("f", fNames, "", 0)

func registerMap(prefix string, names [REGISTER_COUNT]string, alias string, aliased Register) map[string]Register {
	lookup := make(map[string]Register, 2*REGISTER_COUNT+1)
	for n, name := range names {
		lookup[name] = Register(n)
		lookup[prefix+strconv.Itoa(n)] = Register(n)
	}
	if len(alias) != 0 {
		lookup[alias] = aliased
	}
	return lookup
}

// LookupRegister finds a general purpose register by its x-number or ABI name.
func LookupRegister(name string) (reg Register, ok bool) {
	reg, ok = xMap[strings.ToLower(name)]
	return
}

// LookupFRegister finds a floating point register by its f-number or ABI name.
func LookupFRegister(name string) (reg Register, ok bool) {
	reg, ok = fMap[strings.ToLower(name)]
	return
}

// Valid is true when the register index addresses a register file slot.
func (reg Register) Valid() bool {
	return reg < REGISTER_COUNT
}

// String returns the ABI name of a general purpose register.
func (reg Register) String() string {
	if !reg.Valid() {
		return fmt.Sprintf("Register(%d)", uint8(reg))
	}
	return xNames[reg]
}

// FString returns the ABI name of the register as a floating point register.
func (reg Register) FString() string {
	if !reg.Valid() {
		return fmt.Sprintf("FRegister(%d)", uint8(reg))
	}
	return fNames[reg]
}
