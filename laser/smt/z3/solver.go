package z3

// #include <stdlib.h>
// #include <z3.h>
import "C"
import (
	"unsafe"
)

// Solver is a single solver tied to a specific Context within Z3.
//
// It is created via the NewSolver methods on Context. When a solver is
// no longer needed, the Close method must be called. This will remove the
// solver from the context and no more APIs on Solver may be called
// thereafter.
//
// Freeing the context (Context.Close) will NOT automatically close associated
// solvers. They must be managed separately.
type Solver struct {
	ctx       *Context
	rawSolver C.Z3_solver
}

// NewSolver creates a new solver.
func (c *Context) NewSolver() *Solver {
	rawSolver := C.Z3_mk_solver(c.raw)
	C.Z3_solver_inc_ref(c.raw, rawSolver)

	return &Solver{
		ctx:       c,
		rawSolver: rawSolver,
	}
}

// Context returns the context the solver was created in.
func (s *Solver) Context() *Context {
	return s.ctx
}

// SetTimeout sets the timeout of the solver, timeout is in milliseconds.
func (s *Solver) SetTimeout(ms uint) error {
	return s.setParam("timeout", ms)
}

// SetBoolParam sets a boolean solver parameter such as "unsat_core".
func (s *Solver) SetBoolParam(name string, v bool) error {
	return s.setParam(name, v)
}

func (s *Solver) setParam(name string, v interface{}) error {
	params := s.ctx.newParams(name, v)
	defer C.Z3_params_dec_ref(s.ctx.raw, params)
	C.Z3_solver_set_params(s.ctx.raw, s.rawSolver, params)
	return s.ctx.err("Z3_solver_set_params")
}

// Close frees the memory associated with this.
func (s *Solver) Close() error {
	if s.rawSolver != nil {
		C.Z3_solver_dec_ref(s.ctx.raw, s.rawSolver)
		s.rawSolver = nil
	}
	return nil
}

// Assert asserts constraints onto the Solver.
//
// Maps to: Z3_solver_assert
func (s *Solver) Assert(args ...*Bool) error {
	for _, arg := range args {
		C.Z3_solver_assert(s.ctx.raw, s.rawSolver, arg.rawAST)
		if err := s.ctx.err("Z3_solver_assert"); err != nil {
			return err
		}
	}
	return nil
}

// AssertAndTrack asserts c and tracks it under a fresh boolean constant
// named name, so it can be reported in unsat cores.
//
// Maps to: Z3_solver_assert_and_track
func (s *Solver) AssertAndTrack(c *Bool, name string) error {
	tracker := s.ctx.NewBoolConst(name)
	C.Z3_solver_assert_and_track(s.ctx.raw, s.rawSolver, c.rawAST, tracker.rawAST)
	return s.ctx.err("Z3_solver_assert_and_track")
}

// Check checks if the currently set formula is consistent, optionally under
// the given assumptions.
//
// Maps to: Z3_solver_check, Z3_solver_check_assumptions
func (s *Solver) Check(assumptions ...*Bool) (LBool, error) {
	var res C.Z3_lbool
	if len(assumptions) == 0 {
		res = C.Z3_solver_check(s.ctx.raw, s.rawSolver)
	} else {
		raws := rawASTs(assumptions)
		res = C.Z3_solver_check_assumptions(s.ctx.raw, s.rawSolver, C.uint(len(raws)), rawPtr(raws))
	}
	if err := s.ctx.err("Z3_solver_check"); err != nil {
		return Undef, err
	}
	return LBool(res), nil
}

// Model returns the last model from a Check.
//
// Maps to: Z3_solver_get_model
func (s *Solver) Model() (*Model, error) {
	raw := C.Z3_solver_get_model(s.ctx.raw, s.rawSolver)
	if err := s.ctx.err("Z3_solver_get_model"); err != nil {
		return nil, err
	}
	return newModel(s.ctx, raw), nil
}

// UnsatCore returns the tracking constants of the last unsatisfiable Check.
//
// Maps to: Z3_solver_get_unsat_core
func (s *Solver) UnsatCore() ([]*Bool, error) {
	vec := C.Z3_solver_get_unsat_core(s.ctx.raw, s.rawSolver)
	if err := s.ctx.err("Z3_solver_get_unsat_core"); err != nil {
		return nil, err
	}
	return s.ctx.boolsOf(vec), nil
}

// ReasonUnknown explains the last unknown result.
func (s *Solver) ReasonUnknown() string {
	return C.GoString(C.Z3_solver_get_reason_unknown(s.ctx.raw, s.rawSolver))
}

// Push creates a backtracking point.
func (s *Solver) Push() {
	C.Z3_solver_push(s.ctx.raw, s.rawSolver)
}

// Pop backtracks n backtracking points.
func (s *Solver) Pop(n uint) error {
	C.Z3_solver_pop(s.ctx.raw, s.rawSolver, C.uint(n))
	return s.ctx.err("Z3_solver_pop")
}

// NumScopes returns the number of open backtracking points.
func (s *Solver) NumScopes() uint {
	return uint(C.Z3_solver_get_num_scopes(s.ctx.raw, s.rawSolver))
}

// Reset removes all assertions from the solver.
func (s *Solver) Reset() {
	C.Z3_solver_reset(s.ctx.raw, s.rawSolver)
}

// String returns the solver assertions as an SMT-LIB2 script.
func (s *Solver) String() string {
	return C.GoString(C.Z3_solver_to_string(s.ctx.raw, s.rawSolver))
}

// FromString adds the assertions of an SMT-LIB2 script to the solver.
func (s *Solver) FromString(script string) error {
	cs := C.CString(script)
	defer C.free(unsafe.Pointer(cs))
	C.Z3_solver_from_string(s.ctx.raw, s.rawSolver, cs)
	return s.ctx.err("Z3_solver_from_string")
}
