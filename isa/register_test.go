package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterLookup(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		float bool
		reg   Register
		ok    bool
	}){
		{"x0", false, REG_ZERO, true},
		{"zero", false, REG_ZERO, true},
		{"sp", false, REG_SP, true},
		{"x2", false, REG_SP, true},
		{"fp", false, REG_S0, true},
		{"s0", false, REG_S0, true},
		{"t6", false, REG_T6, true},
		{"x31", false, REG_T6, true},
		{"x32", false, 0, false},
		{"f5", false, 0, false},
		{"f5", true, 5, true},
		{"fa0", true, 10, true},
		{"ft11", true, 31, true},
		{"a0", true, 0, false},
	}

	for _, entry := range table {
		var reg Register
		var ok bool
		if entry.float {
			reg, ok = LookupFRegister(entry.name)
		} else {
			reg, ok = LookupRegister(entry.name)
		}
		assert.Equal(entry.ok, ok, entry.name)
		if ok {
			assert.Equal(entry.reg, reg, entry.name)
		}
	}

	assert.Equal("a0", REG_A0.String())
	assert.Equal("fs11", Register(27).FString())
}
