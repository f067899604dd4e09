package z3

// #include <stdlib.h>
// #include <z3.h>
import "C"
import (
	"unsafe"
)

// AST represents an AST value in Z3.
//
// AST memory management is automatically managed by the Context it
// is contained within. When the Context is freed, so are the AST nodes.
type AST struct {
	ctx    *Context
	rawAST C.Z3_ast
}

// String returns a human-friendly string version of the AST.
func (a *AST) String() string {
	return C.GoString(C.Z3_ast_to_string(a.ctx.raw, a.rawAST))
}

// Context returns the context the AST belongs to.
func (a *AST) Context() *Context {
	return a.ctx
}

// IsBool reports whether the AST has the boolean sort.
func (a *AST) IsBool() bool {
	sort := C.Z3_get_sort(a.ctx.raw, a.rawAST)
	return C.Z3_get_sort_kind(a.ctx.raw, sort) == C.Z3_BOOL_SORT
}

// IsNumeral reports whether the AST is a numeral after simplification.
func (a *AST) IsNumeral() bool {
	return bool(C.Z3_is_numeral_ast(a.ctx.raw, C.Z3_simplify(a.ctx.raw, a.rawAST)))
}

// DeclName returns the name of the declaration of an application, e.g. the
// name of a constant. It returns "" for non-applications.
func (a *AST) DeclName() string {
	if C.Z3_get_ast_kind(a.ctx.raw, a.rawAST) != C.Z3_APP_AST {
		return ""
	}
	decl := C.Z3_get_app_decl(a.ctx.raw, C.Z3_to_app(a.ctx.raw, a.rawAST))
	sym := C.Z3_get_decl_name(a.ctx.raw, decl)
	return C.GoString(C.Z3_get_symbol_string(a.ctx.raw, sym))
}

// Hash returns the structural hash of the AST.
func (a *AST) Hash() uint {
	return uint(C.Z3_get_ast_hash(a.ctx.raw, a.rawAST))
}

// Translate is used to copy ast from one context to another.
func (a *AST) Translate(c *Context) *AST {
	if a.ctx == c {
		return a
	}
	return &AST{
		ctx:    c,
		rawAST: C.Z3_translate(a.ctx.raw, a.rawAST, c.raw),
	}
}

func (c *Context) wrap(raw C.Z3_ast) AST {
	return AST{ctx: c, rawAST: raw}
}

func rawASTs(args []*Bool) []C.Z3_ast {
	raws := make([]C.Z3_ast, len(args))
	for i, arg := range args {
		raws[i] = arg.rawAST
	}
	return raws
}

func rawPtr(raws []C.Z3_ast) *C.Z3_ast {
	if len(raws) == 0 {
		return nil
	}
	return (*C.Z3_ast)(unsafe.Pointer(&raws[0]))
}
