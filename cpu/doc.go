// Package cpu simulates an RV32I processor over a paged 4 GiB memory.
//
// The simulator fetches, decodes and executes one instruction per Step,
// emulating a subset of the RARS system calls through ecall. Input
// requests suspend the processor in the WaitingForInput state until the
// host supplies a value with Resume. Every executed instruction leaves a
// history record, so Undo can walk the program backwards.
//
// Floating point and CSR instructions assemble, but do not execute.
package cpu
