package strategy

import (
	"sync"

	"go-laser/laser/ethereum/state"
	"go-laser/logging"
)

// DelayConstraint defers feasibility checks: new states wait in a pending
// list and are only solved when the work list runs dry. Satisfying models
// are cached to answer later checks without the solver.
type DelayConstraint struct {
	workList
	pending []*state.GlobalState
	opts    func() state.ModelOptions
	solver  sync.Locker
	logger  *logging.Logger
}

// NewDelayConstraint creates the strategy. opts is read for every check so a
// moving deadline is honored; solverLock guards the z3 context the pending
// states belong to.
func NewDelayConstraint(opts func() state.ModelOptions, solverLock sync.Locker) *DelayConstraint {
	logger := logging.GlobalLogger.NewSubLogger("service", "strategy")
	logger.Info("Loaded search strategy extension: DelayConstraintStrategy")
	return &DelayConstraint{
		workList: newWorkList(),
		opts:     opts,
		solver:   solverLock,
		logger:   logger,
	}
}

// Push adds states to the pending list.
func (d *DelayConstraint) Push(states ...*state.GlobalState) {
	d.pending = append(d.pending, states...)
}

// Len counts both checked and pending states.
func (d *DelayConstraint) Len() int {
	return d.workList.Len() + len(d.pending)
}

func (d *DelayConstraint) RunCheck() bool {
	return false
}

func (d *DelayConstraint) Next() *state.GlobalState {
	for d.workList.Len() == 0 && len(d.pending) > 0 {
		s := d.pending[0]
		d.pending = d.pending[1:]
		if d.feasible(s) {
			d.workList.Push(s)
		}
	}
	return d.take(0)
}

func (d *DelayConstraint) feasible(s *state.GlobalState) bool {
	d.solver.Lock()
	defer d.solver.Unlock()
	_, err := s.WorldState.Constraints.GetModel(s.Context(), d.opts())
	if err != nil {
		d.logger.Debug("dropping pending state", err)
		return false
	}
	return true
}
