package smt

import "go-laser/laser/smt/z3"

// Result is the verdict of a satisfiability check.
type Result int

const (
	Sat Result = iota
	Unsat
	Unknown
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

func fromLBool(b z3.LBool) Result {
	switch b {
	case z3.True:
		return Sat
	case z3.False:
		return Unsat
	default:
		return Unknown
	}
}
