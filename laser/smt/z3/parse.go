package z3

// #include <stdlib.h>
// #include <z3.h>
import "C"
import (
	"unsafe"
)

func (c *Context) boolsOf(vec C.Z3_ast_vector) []*Bool {
	C.Z3_ast_vector_inc_ref(c.raw, vec)
	defer C.Z3_ast_vector_dec_ref(c.raw, vec)
	n := uint(C.Z3_ast_vector_size(c.raw, vec))
	out := make([]*Bool, 0, n)
	for i := uint(0); i < n; i++ {
		out = append(out, &Bool{c.wrap(C.Z3_ast_vector_get(c.raw, vec, C.uint(i)))})
	}
	return out
}

// ParseSMTLIB2String parses the assertions of an SMT-LIB2 script.
//
// Maps to: Z3_parse_smtlib2_string
func (c *Context) ParseSMTLIB2String(script string) ([]*Bool, error) {
	cs := C.CString(script)
	defer C.free(unsafe.Pointer(cs))
	vec := C.Z3_parse_smtlib2_string(c.raw, cs, 0, nil, nil, 0, nil, nil)
	if err := c.err("Z3_parse_smtlib2_string"); err != nil {
		return nil, err
	}
	return c.boolsOf(vec), nil
}
