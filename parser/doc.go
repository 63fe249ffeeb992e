// Package parser turns RISC-V assembly source into instructions in
// intermediate form, a data segment image and a label table.
//
// Source is processed one line at a time: the Lexer produces tokens, a
// line starting with a mnemonic is handed to the Matcher, which selects
// the first operand pattern of that mnemonic accepting the whole line
// and expands it into one or two machine instructions. Label uses are
// recorded in the Table and resolved once the layout is known.
package parser
