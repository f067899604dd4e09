// Package smt wraps the Z3 binding in solver sessions that never abort the
// analysis: foreign failures become Unknown verdicts and empty models.
package smt

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go-laser/laser/smt/z3"
	"go-laser/logging"
)

// rawSolver is the part of the binding shared by plain and optimizing solvers.
type rawSolver interface {
	SetTimeout(ms uint) error
	SetBoolParam(name string, v bool) error
	Assert(args ...*z3.Bool) error
	AssertAndTrack(c *z3.Bool, name string) error
	Check(assumptions ...*z3.Bool) (z3.LBool, error)
	Model() (*z3.Model, error)
	UnsatCore() ([]*z3.Bool, error)
	ReasonUnknown() string
	String() string
	Close() error
}

// Option configures a solver session.
type Option func(*BaseSolver)

// WithStatistics records every check into stats.
func WithStatistics(stats *Statistics) Option {
	return func(s *BaseSolver) {
		s.stats = stats
	}
}

// WithLogger replaces the session logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *BaseSolver) {
		s.logger = logger
	}
}

// BaseSolver holds the operations common to Solver and Optimize. A session
// owns its raw handle and must not be shared between goroutines.
type BaseSolver struct {
	raw    rawSolver
	logger *logging.Logger
	stats  *Statistics
	// tracked holds the tracked names of every push level, outermost first.
	tracked []mapset.Set[string]
	// verdict is the result of the last check since the assertions changed.
	verdict Result

	// poisoned is the error of a failed Add made at push level poisonedAt.
	// Checks report Unknown while set.
	poisoned   error
	poisonedAt int
}

func newBaseSolver(raw rawSolver, opts ...Option) *BaseSolver {
	s := &BaseSolver{
		raw:     raw,
		logger:  logging.GlobalLogger.NewSubLogger("service", "smt"),
		tracked: []mapset.Set[string]{mapset.NewThreadUnsafeSet[string]()},
		verdict: Unknown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTimeout sets the per-check timeout in milliseconds.
func (s *BaseSolver) SetTimeout(ms uint) {
	if err := s.raw.SetTimeout(ms); err != nil {
		s.logger.Info("unable to set solver timeout", err)
	}
}

// EnableUnsatCore turns on unsat core production.
func (s *BaseSolver) EnableUnsatCore() {
	if err := s.raw.SetBoolParam("unsat_core", true); err != nil {
		s.logger.Info("unable to enable unsat cores", err)
	}
}

// Add asserts constraints. A failure is logged and makes later checks report
// Unknown until the session is reset or its push level is popped.
func (s *BaseSolver) Add(constraints ...*z3.Bool) {
	s.verdict = Unknown
	if err := s.raw.Assert(constraints...); err != nil {
		s.logger.Info("unable to add constraints to the solver", err)
		s.poison(err)
	}
}

// AssertAndTrack asserts c tracked under name. The constraint is asserted
// even when name is already tracked in a live push level.
func (s *BaseSolver) AssertAndTrack(c *z3.Bool, name string) {
	s.verdict = Unknown
	if s.isTracked(name) {
		s.logger.Warn("tracked constraint name ", name, " is already in use")
	}
	s.tracked[len(s.tracked)-1].Add(name)
	if err := s.raw.AssertAndTrack(c, name); err != nil {
		s.logger.Info("unable to track constraint ", name, err)
		s.poison(err)
	}
}

func (s *BaseSolver) isTracked(name string) bool {
	for _, scope := range s.tracked {
		if scope.Contains(name) {
			return true
		}
	}
	return false
}

func (s *BaseSolver) poison(err error) {
	if s.poisoned == nil {
		s.poisoned = err
		s.poisonedAt = len(s.tracked) - 1
	}
}

// Check runs the solver on the asserted constraints and assumptions.
func (s *BaseSolver) Check(assumptions ...*z3.Bool) Result {
	if s.poisoned != nil {
		s.logger.Info("solver session is unusable, reporting unknown", s.poisoned)
		s.verdict = Unknown
		return Unknown
	}

	start := time.Now()
	res, err := s.raw.Check(assumptions...)
	if s.stats != nil {
		s.stats.Record(time.Since(start))
	}
	if err != nil {
		s.logger.Info("solver check failed, reporting unknown", err)
		s.verdict = Unknown
		return Unknown
	}

	result := fromLBool(res)
	if result == Unknown {
		s.logger.Debug("solver returned unknown: ", s.raw.ReasonUnknown())
	}
	s.verdict = result
	return result
}

// Model returns the model of the last check. The model is empty unless that
// check was satisfiable and no assertion changed since.
func (s *BaseSolver) Model() *Model {
	if s.verdict != Sat || s.poisoned != nil {
		return NewModel()
	}
	m, err := s.raw.Model()
	if err != nil {
		s.logger.Info("solver model unavailable", err)
		return NewModel()
	}
	return NewModel(m)
}

// UnsatCore returns the names of the tracked constraints in the last unsat core.
func (s *BaseSolver) UnsatCore() []string {
	if s.verdict != Unsat || s.poisoned != nil {
		return nil
	}
	core, err := s.raw.UnsatCore()
	if err != nil {
		s.logger.Info("unsat core unavailable", err)
		return nil
	}
	names := make([]string, 0, len(core))
	for _, c := range core {
		names = append(names, c.DeclName())
	}
	return names
}

// Sexpr returns the session as an SMT-LIB2 script.
func (s *BaseSolver) Sexpr() string {
	return s.raw.String()
}

// Close releases the raw handle.
func (s *BaseSolver) Close() error {
	return s.raw.Close()
}

func (s *BaseSolver) clear() {
	s.poisoned = nil
	s.verdict = Unknown
	s.tracked = []mapset.Set[string]{mapset.NewThreadUnsafeSet[string]()}
}

// Solver is a plain solver session.
type Solver struct {
	*BaseSolver
	z *z3.Solver
}

// NewSolver creates a plain session in ctx.
func NewSolver(ctx *z3.Context, opts ...Option) *Solver {
	z := ctx.NewSolver()
	return &Solver{
		BaseSolver: newBaseSolver(z, opts...),
		z:          z,
	}
}

// Reset removes every assertion and tracked name.
func (s *Solver) Reset() {
	s.z.Reset()
	s.clear()
}

// Push creates a backtracking point.
func (s *Solver) Push() {
	s.z.Push()
	s.tracked = append(s.tracked, mapset.NewThreadUnsafeSet[string]())
}

// Pop backtracks n points. Names tracked in the popped levels become free
// again, and a failed Add made inside them no longer poisons the session.
func (s *Solver) Pop(n uint) {
	s.verdict = Unknown
	if err := s.z.Pop(n); err != nil {
		s.logger.Info("unable to pop solver scopes", err)
		return
	}
	depth := len(s.tracked) - int(n)
	if depth < 1 {
		depth = 1
	}
	s.tracked = s.tracked[:depth]
	if s.poisoned != nil && s.poisonedAt >= depth {
		s.poisoned = nil
	}
}

// Optimize is an optimizing solver session.
type Optimize struct {
	*BaseSolver
	z *z3.Optimize
}

// NewOptimize creates an optimizing session in ctx.
func NewOptimize(ctx *z3.Context, opts ...Option) *Optimize {
	z := ctx.NewOptimize()
	return &Optimize{
		BaseSolver: newBaseSolver(z, opts...),
		z:          z,
	}
}

// Minimize adds a minimization objective.
func (o *Optimize) Minimize(e *z3.Bitvec) {
	if err := o.z.Minimize(e); err != nil {
		o.logger.Info("unable to add minimization objective", err)
		o.poison(err)
	}
}

// Maximize adds a maximization objective.
func (o *Optimize) Maximize(e *z3.Bitvec) {
	if err := o.z.Maximize(e); err != nil {
		o.logger.Info("unable to add maximization objective", err)
		o.poison(err)
	}
}
