package z3

// #include <z3.h>
import "C"

// Sort represents a sort in Z3.
type Sort struct {
	rawCtx  C.Z3_context
	rawSort C.Z3_sort
}

// BoolSort returns the boolean type.
func (c *Context) BoolSort() *Sort {
	return &Sort{
		rawCtx:  c.raw,
		rawSort: C.Z3_mk_bool_sort(c.raw),
	}
}

// BvSort returns the bitvector type
func (c *Context) BvSort(size uint) *Sort {
	return &Sort{
		rawCtx:  c.raw,
		rawSort: C.Z3_mk_bv_sort(c.raw, C.uint(size)),
	}
}

// ArraySort returns an array type from domain to rng.
func (c *Context) ArraySort(domain, rng *Sort) *Sort {
	return &Sort{
		rawCtx:  c.raw,
		rawSort: C.Z3_mk_array_sort(c.raw, domain.rawSort, rng.rawSort),
	}
}
