package z3

// #include <z3.h>
import "C"

// Model is a satisfying assignment produced by a solver.
type Model struct {
	ctx *Context
	raw C.Z3_model
}

func newModel(c *Context, raw C.Z3_model) *Model {
	C.Z3_model_inc_ref(c.raw, raw)
	return &Model{ctx: c, raw: raw}
}

// Eval evaluates a in the model. With completion set, constants the model
// leaves unconstrained receive a default interpretation.
//
// Maps to: Z3_model_eval
func (m *Model) Eval(a *AST, completion bool) (*AST, error) {
	var out C.Z3_ast
	ok := C.Z3_model_eval(m.ctx.raw, m.raw, a.rawAST, C.bool(completion), &out)
	if err := m.ctx.err("Z3_model_eval"); err != nil {
		return nil, err
	}
	if !bool(ok) {
		return nil, &Error{Op: "Z3_model_eval", Message: "evaluation failed"}
	}
	return &AST{ctx: m.ctx, rawAST: out}, nil
}

// Assignments returns the interpretation of every constant in the model,
// keyed by constant name.
func (m *Model) Assignments() map[string]string {
	n := uint(C.Z3_model_get_num_consts(m.ctx.raw, m.raw))
	out := make(map[string]string, n)
	for i := uint(0); i < n; i++ {
		decl := C.Z3_model_get_const_decl(m.ctx.raw, m.raw, C.uint(i))
		name := C.GoString(C.Z3_get_symbol_string(m.ctx.raw, C.Z3_get_decl_name(m.ctx.raw, decl)))
		interp := C.Z3_model_get_const_interp(m.ctx.raw, m.raw, decl)
		if interp == nil {
			continue
		}
		out[name] = C.GoString(C.Z3_ast_to_string(m.ctx.raw, interp))
	}
	return out
}

// String returns the model in Z3's textual form.
func (m *Model) String() string {
	return C.GoString(C.Z3_model_to_string(m.ctx.raw, m.raw))
}

// Close frees the memory associated with this model.
func (m *Model) Close() error {
	if m.raw != nil {
		C.Z3_model_dec_ref(m.ctx.raw, m.raw)
		m.raw = nil
	}
	return nil
}
