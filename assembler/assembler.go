// Package assembler encodes parsed programs into machine words and a
// data segment image.
package assembler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ezrec/rvasm/config"
	"github.com/ezrec/rvasm/isa"
	"github.com/ezrec/rvasm/parser"
)

// DATA_PAD_WORDS is the granule the data segment is padded to.
const DATA_PAD_WORDS = 1024

// Instruction is one encoded machine word.
type Instruction struct {
	Line    int    // Source line.
	Address uint32 // Address in the text segment.
	Word    uint32 // Machine word.
	Display string // Disassembly of Word.
}

// Result is an assembled program.
type Result struct {
	Data         []byte        // Data segment, padded to a multiple of DATA_PAD_WORDS words.
	Instructions []Instruction // Encoded text, in address order.
}

// Assembler encodes parser results for a memory layout.
type Assembler struct {
	Config  *config.Config // Memory layout; config.Default() when nil.
	Verbose bool           // If set, verbosely logs the encoded words.
}

func (asm *Assembler) config() *config.Config {
	if asm.Config == nil {
		return config.Default()
	}
	return asm.Config
}

// resolver holds the resolved address of every label reference.
type resolver struct {
	table     *parser.Table
	addresses []uint32
}

func newResolver(table *parser.Table, cfg *config.Config) (r *resolver) {
	if table == nil {
		table = &parser.Table{}
	}

	// Undefined references are reported by the instruction or data
	// fixup that uses them.
	addresses, _ := table.Resolve(cfg.TextBase, cfg.DataBase)

	r = &resolver{
		table:     table,
		addresses: addresses,
	}
	return
}

func (r *resolver) address(ref int) (addr uint32, err error) {
	if ref < 0 || ref >= len(r.addresses) {
		err = isa.ErrOperandUnresolved
		return
	}

	name := r.table.Refs[ref].Name
	if _, ok := r.table.Lookup(name); !ok {
		err = &parser.ErrLabel{Name: name, Err: parser.ErrLabelUndefined}
		return
	}

	addr = r.addresses[ref]
	return
}

// encode resolves the label operands of inst, located at pc, and packs it.
func (r *resolver) encode(inst isa.Instruction, pc uint32) (word uint32, err error) {
	format := inst.Op.Format()

	resolved := inst
	resolved.Operands = make([]isa.Operand, len(inst.Operands))
	for n, operand := range inst.Operands {
		if operand.Kind != isa.OPERAND_LABEL {
			resolved.Operands[n] = operand
			continue
		}

		var addr uint32
		addr, err = r.address(operand.Ref)
		if err != nil {
			return
		}

		value := operand.Handler.Resolve(format, addr, pc)
		err = format.CheckImmediate(value)
		if err != nil {
			return
		}
		resolved.Operands[n] = isa.Imm(int32(value))
	}

	word, err = resolved.Encode()
	return
}

// Assemble encodes every instruction and builds the data image. Errors
// are collected for the whole program; an instruction that fails to
// encode is left out of the result, the others keep their addresses.
func (asm *Assembler) Assemble(pr *parser.Result) (res *Result, err error) {
	cfg := asm.config()

	r := newResolver(pr.Labels, cfg)

	var errs []error
	res = &Result{}

	for n, inst := range pr.Text {
		pc := cfg.TextBase + 4*uint32(n)

		if uint64(4*(n+1)) > uint64(cfg.TextLimit) {
			errs = append(errs, &ErrAssembly{Line: inst.Line, Err: ErrTextLimit})
			break
		}

		word, enc_err := r.encode(inst, pc)
		if enc_err != nil {
			errs = append(errs, &ErrAssembly{Line: inst.Line, Err: enc_err})
			continue
		}

		display := inst.String()
		if decoded, dec_err := isa.Decode(word); dec_err == nil {
			display = decoded.String()
		}

		if asm.Verbose {
			log.Printf("%08x: %08x %v\n", pc, word, display)
		}

		res.Instructions = append(res.Instructions, Instruction{
			Line:    inst.Line,
			Address: pc,
			Word:    word,
			Display: display,
		})
	}

	res.Data, errs = asm.data(pr, r, cfg, errs)

	err = errors.Join(errs...)
	return
}

// data copies the data segment, fills in fixups and pads it.
func (asm *Assembler) data(pr *parser.Result, r *resolver, cfg *config.Config, errs []error) ([]byte, []error) {
	if uint64(len(pr.Data)) > uint64(cfg.DataLimit) {
		errs = append(errs, &ErrAssembly{Err: ErrDataLimit})
	}

	size := (len(pr.Data) + 3) &^ 3
	granule := 4 * DATA_PAD_WORDS
	size = max(granule, (size+granule-1)/granule*granule)

	data := make([]byte, size)
	copy(data, pr.Data)

	for _, fix := range pr.Fixups {
		addr, err := r.address(fix.Ref)
		if err != nil {
			errs = append(errs, &ErrAssembly{Line: fix.Line, Err: err})
			continue
		}
		binary.LittleEndian.PutUint32(data[fix.Offset:], addr)
	}

	return data, errs
}

// Dump is an assembled program as binary digit strings.
type Dump struct {
	Text []string // One 32 digit string per instruction.
	Data []string // One 32 digit string per data word.
}

func binaryWord(word uint32) string {
	return fmt.Sprintf("%032b", word)
}

// Dump renders the program as memory image text. Nothing is returned
// when any instruction fails to assemble.
func (asm *Assembler) Dump(pr *parser.Result) (dump *Dump, err error) {
	res, err := asm.Assemble(pr)
	if err != nil {
		return
	}

	dump = &Dump{}
	for _, inst := range res.Instructions {
		dump.Text = append(dump.Text, binaryWord(inst.Word))
	}
	for n := 0; n < len(res.Data); n += 4 {
		dump.Data = append(dump.Data, binaryWord(binary.LittleEndian.Uint32(res.Data[n:])))
	}

	return
}

// TextString joins the text segment lines.
func (dump *Dump) TextString() string {
	return strings.Join(dump.Text, "\n")
}

// DataString joins the data segment lines.
func (dump *Dump) DataString() string {
	return strings.Join(dump.Data, "\n")
}
