package z3

// #include <z3.h>
import "C"

// LBool is the lifted boolean type representing false, true, and undefined.
type LBool int8

const (
	False LBool = C.Z3_L_FALSE
	Undef LBool = C.Z3_L_UNDEF
	True  LBool = C.Z3_L_TRUE
)

func (l LBool) String() string {
	switch l {
	case True:
		return "sat"
	case False:
		return "unsat"
	default:
		return "unknown"
	}
}
