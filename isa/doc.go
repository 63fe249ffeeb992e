// Package isa describes the RV32I and RV32F instruction sets.
//
// It holds the operator tables, the general and floating point register
// files with their ABI aliases, the six base instruction formats and the
// field layout used to pack and unpack 32-bit instruction words. The
// intermediate representation shared by the parser, assembler and
// simulator (Instruction and Operand) is defined here as well.
package isa
