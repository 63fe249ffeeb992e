package parser

import (
	"errors"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// evaluate does compile-time $(...) evaluations. Every equate is visible
// to the expression, as is LINENO.
func evaluate(expr string, equates map[string]int64, lineno int) (value int64, err error) {
	thread := starlark.Thread{Name: "expr"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{
		"LINENO": starlark.MakeInt(lineno),
	}
	for key, equ := range equates {
		pred[key] = starlark.MakeInt64(equ)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrExpression, err)
		return
	}

	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrExpression
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrExpression
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrExpression
		return
	}

	return
}
