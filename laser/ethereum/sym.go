package ethereum

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go-laser/disassembler"
	"go-laser/laser/ethereum/cfg"
	"go-laser/laser/ethereum/state"
	"go-laser/laser/ethereum/strategy"
	"go-laser/laser/ethereum/transaction"
	"go-laser/laser/smt"
	"go-laser/laser/smt/z3"
	"go-laser/logging"
	"go-laser/support"
	"golang.org/x/sync/errgroup"
)

// DefaultGasLimit is the gas limit of the transactions SymExec sends.
const DefaultGasLimit = 8000000

// ErrNoContractCreated is returned by SymExec when every path of the
// creation transaction reverted.
var ErrNoContractCreated = errors.New("no contract was created during the execution of contract creation")

// TransactionEnd signals that the evaluated instruction ended the transaction.
type TransactionEnd struct {
	Revert bool
	// ReturnData of a successful creation becomes the runtime code of the new account.
	ReturnData []byte
}

// Step is the outcome of evaluating one instruction.
type Step struct {
	Opcode string
	States []*state.GlobalState
	End    *TransactionEnd
}

// Evaluator executes the instruction at the pc of a state.
type Evaluator interface {
	Evaluate(gs *state.GlobalState) (*Step, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(gs *state.GlobalState) (*Step, error)

func (f EvaluatorFunc) Evaluate(gs *state.GlobalState) (*Step, error) {
	return f(gs)
}

type InstrHook func(gs *state.GlobalState)

// LaserEVM explores the states of transactions staged by its dispatcher.
// All z3 work of a run shares one context, so evaluation, pruning and
// graph bookkeeping are serialized even with several workers.
type LaserEVM struct {
	RunID uuid.UUID

	config      *support.Config
	ctx         *z3.Context
	evaluator   Evaluator
	recorder    *cfg.Recorder
	dispatcher  *transaction.Dispatcher
	actors      *transaction.Actors
	timeHandler *TimeHandler
	stats       *smt.Statistics
	cache       *state.ModelCache
	resolver    disassembler.SignatureResolver
	logger      *logging.Logger

	preHooks  map[string][]InstrHook
	postHooks map[string][]InstrHook

	openMu     sync.Mutex
	openStates []*state.WorldState

	// mu guards the work list. It may be held while taking solverMu, never
	// the other way around.
	mu          sync.Mutex
	cond        *sync.Cond
	strategy    strategy.Strategy
	runCheck    bool
	inflight    int
	stopped     bool
	solverMu    sync.Mutex
	finalMu     sync.Mutex
	finalStates []*state.GlobalState
	totalStates atomic.Int64
}

type Option func(*LaserEVM)

func WithSignatureResolver(r disassembler.SignatureResolver) Option {
	return func(e *LaserEVM) {
		e.resolver = r
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(e *LaserEVM) {
		e.logger = l
	}
}

// WithStatistics collects solver statistics of the run into stats.
func WithStatistics(stats *smt.Statistics) Option {
	return func(e *LaserEVM) {
		e.stats = stats
	}
}

func NewLaserEVM(ctx *z3.Context, config *support.Config, evaluator Evaluator, opts ...Option) (*LaserEVM, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	cache, err := state.NewModelCache(config.ModelCacheSize)
	if err != nil {
		return nil, err
	}

	e := &LaserEVM{
		RunID:       uuid.New(),
		config:      config,
		ctx:         ctx,
		evaluator:   evaluator,
		recorder:    cfg.NewRecorder(config.RequiresStatespace),
		actors:      transaction.NewActors(ctx),
		timeHandler: NewTimeHandler(),
		stats:       &smt.Statistics{},
		cache:       cache,
		logger:      logging.GlobalLogger.NewSubLogger("service", "laser"),
		preHooks:    make(map[string][]InstrHook),
		postHooks:   make(map[string][]InstrHook),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cond = sync.NewCond(&e.mu)
	e.strategy = e.newStrategy()
	e.runCheck = e.strategy.RunCheck()

	dispatcherOpts := []transaction.DispatcherOption{transaction.WithLogger(e.logger)}
	if e.resolver != nil {
		dispatcherOpts = append(dispatcherOpts, transaction.WithSignatureResolver(e.resolver))
	}
	e.dispatcher = transaction.NewDispatcher(transaction.NewIDManager(), dispatcherOpts...)
	return e, nil
}

func (e *LaserEVM) newStrategy() strategy.Strategy {
	var s strategy.Strategy
	switch e.config.Strategy {
	case support.StrategyDFS:
		s = strategy.NewDepthFirst()
	case support.StrategyDelayed:
		s = strategy.NewDelayConstraint(e.modelOptions, &e.solverMu)
	default:
		s = strategy.NewBreadthFirst()
	}
	if e.config.LoopBound > 0 {
		s = strategy.NewBoundedLoops(s, e.config.LoopBound)
	}
	return s
}

func (e *LaserEVM) modelOptions() state.ModelOptions {
	return state.ModelOptions{
		Timeout:  e.config.SolverTimeout,
		Deadline: e.timeHandler.Deadline(),
		Stats:    e.stats,
		Cache:    e.cache,
	}
}

func (e *LaserEVM) Context() *z3.Context {
	return e.ctx
}

func (e *LaserEVM) Statespace() *cfg.Recorder {
	return e.recorder
}

func (e *LaserEVM) Dispatcher() *transaction.Dispatcher {
	return e.dispatcher
}

func (e *LaserEVM) Actors() *transaction.Actors {
	return e.actors
}

func (e *LaserEVM) Statistics() *smt.Statistics {
	return e.stats
}

// TotalStates returns the number of states executed so far.
func (e *LaserEVM) TotalStates() int64 {
	return e.totalStates.Load()
}

// RegisterPreHook runs hook before every instruction with the given opcode.
// Hooks must be registered before execution starts.
func (e *LaserEVM) RegisterPreHook(opcode string, hook InstrHook) {
	e.preHooks[opcode] = append(e.preHooks[opcode], hook)
}

// RegisterPostHook runs hook on every state produced by the given opcode.
func (e *LaserEVM) RegisterPostHook(opcode string, hook InstrHook) {
	e.postHooks[opcode] = append(e.postHooks[opcode], hook)
}

// OpenStates returns the world states of transactions that ended without
// reverting.
func (e *LaserEVM) OpenStates() []*state.WorldState {
	e.openMu.Lock()
	defer e.openMu.Unlock()
	return append([]*state.WorldState(nil), e.openStates...)
}

// SetOpenStates replaces the open-state frontier.
func (e *LaserEVM) SetOpenStates(states ...*state.WorldState) {
	e.openMu.Lock()
	defer e.openMu.Unlock()
	e.openStates = states
}

func (e *LaserEVM) TakeOpenStates() []*state.WorldState {
	e.openMu.Lock()
	defer e.openMu.Unlock()
	open := e.openStates
	e.openStates = nil
	return open
}

func (e *LaserEVM) addWorldState(ws *state.WorldState) {
	e.openMu.Lock()
	defer e.openMu.Unlock()
	e.openStates = append(e.openStates, ws)
}

func (e *LaserEVM) AddToWorkList(states ...*state.GlobalState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategy.Push(states...)
	e.cond.Broadcast()
}

// SymExec creates the contract from creationCode and then sends
// TransactionCount layers of symbolic message calls from the attacker.
func (e *LaserEVM) SymExec(creationCode, contractName string) error {
	start := time.Now()
	e.logger.Info("Starting symbolic execution", logging.StructuredLogInfo{"run": e.RunID.String()})
	e.timeHandler.StartExecution(e.config.ExecutionTimeout)
	e.SetOpenStates(state.NewWorldState(e.ctx))

	creator := addressHex(e.actors.Creator())
	none := ""
	_, err := e.dispatcher.ExecuteTransaction(e, transaction.Params{
		CalleeAddress: &none,
		CallerAddress: &creator,
		OriginAddress: &creator,
		Code:          creationCode,
		ContractName:  contractName,
		GasLimit:      DefaultGasLimit,
	})
	if err != nil {
		return err
	}

	open := e.OpenStates()
	if len(open) == 0 {
		return errors.WithStack(ErrNoContractCreated)
	}
	sequence := open[0].TransactionSequence
	target := addressHex(sequence[len(sequence)-1].CalleeAccount.Address)
	attacker := addressHex(e.actors.Attacker())

	for i := 0; i < e.config.TransactionCount; i++ {
		if len(e.OpenStates()) == 0 {
			e.logger.Info("No open states left, stopping after ", i, " message calls")
			break
		}
		if e.timeHandler.TimeRemaining() <= 0 {
			e.logger.Info("Execution timeout reached, stopping after ", i, " message calls")
			break
		}
		_, err := e.dispatcher.ExecuteTransaction(e, transaction.Params{
			CalleeAddress:    &target,
			CallerAddress:    &attacker,
			OriginAddress:    &attacker,
			GasLimit:         DefaultGasLimit,
			SymbolicCalldata: true,
		})
		if err != nil {
			return err
		}
	}

	e.logger.Info("Finished symbolic execution", logging.StructuredLogInfo{
		"run":          e.RunID.String(),
		"nodes":        len(e.recorder.Nodes()),
		"edges":        len(e.recorder.Edges()),
		"total_states": e.totalStates.Load(),
		"elapsed":      time.Since(start).String(),
	})
	e.logger.Debug(e.stats.String())
	return nil
}

// Exec drains the work list with the configured number of workers. A
// creation stops at the create timeout, any run at the execution timeout;
// states left in the work list at that point are dropped.
func (e *LaserEVM) Exec(create, trackGas bool) []*state.GlobalState {
	deadline := e.timeHandler.Deadline()
	if create && e.config.CreateTimeout > 0 {
		createDeadline := time.Now().Add(time.Duration(e.config.CreateTimeout) * time.Second)
		if deadline.IsZero() || createDeadline.Before(deadline) {
			deadline = createDeadline
		}
	}

	e.mu.Lock()
	e.stopped = false
	e.mu.Unlock()

	var g errgroup.Group
	for i := 0; i < e.config.Workers; i++ {
		g.Go(func() error {
			e.work(deadline, trackGas)
			return nil
		})
	}
	_ = g.Wait()

	e.finalMu.Lock()
	defer e.finalMu.Unlock()
	final := e.finalStates
	e.finalStates = nil
	return final
}

func (e *LaserEVM) work(deadline time.Time, trackGas bool) {
	for {
		gs := e.nextState(deadline)
		if gs == nil {
			return
		}
		newStates := e.executeState(gs, trackGas)

		e.mu.Lock()
		if !e.stopped {
			e.strategy.Push(newStates...)
		}
		e.inflight--
		e.cond.Broadcast()
		e.mu.Unlock()
	}
}

// nextState blocks until a state is available or no worker can produce one.
func (e *LaserEVM) nextState(deadline time.Time) *state.GlobalState {
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		if e.stopped {
			return nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			e.logger.Info("Hit execution timeout, dropping ", e.strategy.Len(), " states")
			e.stopped = true
			e.strategy = e.newStrategy()
			e.cond.Broadcast()
			return nil
		}
		if gs := e.strategy.Next(); gs != nil {
			if gs.Mstate.Depth >= e.config.MaxDepth {
				continue
			}
			e.inflight++
			return gs
		}
		if e.inflight == 0 {
			e.cond.Broadcast()
			return nil
		}
		e.cond.Wait()
	}
}

func (e *LaserEVM) executeState(gs *state.GlobalState, trackGas bool) []*state.GlobalState {
	e.solverMu.Lock()
	defer e.solverMu.Unlock()
	e.totalStates.Add(1)

	instr := gs.CurrentInstruction()
	if instr == nil {
		// Running past the end of the code is an implicit STOP.
		e.endTransaction(gs, &TransactionEnd{}, trackGas)
		return nil
	}
	for _, hook := range e.preHooks[instr.Opcode] {
		hook(gs)
	}

	step, err := e.evaluator.Evaluate(gs)
	if err != nil {
		e.logger.Debug("Encountered a VM exception, ending the path: ", err)
		e.endTransaction(gs, &TransactionEnd{Revert: true}, trackGas)
		return nil
	}
	if step.End != nil {
		e.endTransaction(gs, step.End, trackGas)
		return nil
	}

	depth := gs.Mstate.Depth + 1
	newStates := step.States
	for _, s := range newStates {
		s.Mstate.Depth = depth
	}
	if e.runCheck && len(newStates) > 1 && rand.Float64() < e.config.PruningFactor {
		newStates = e.prune(newStates)
	}
	e.manageCFG(step.Opcode, newStates)

	for _, s := range newStates {
		for _, hook := range e.postHooks[step.Opcode] {
			hook(s)
		}
	}
	if len(newStates) == 0 && trackGas {
		e.addFinalState(gs)
	}
	return newStates
}

func (e *LaserEVM) prune(states []*state.GlobalState) []*state.GlobalState {
	opts := e.modelOptions()
	feasible := states[:0:0]
	for _, s := range states {
		if s.WorldState.Constraints.IsPossible(s.Context(), opts) {
			feasible = append(feasible, s)
		}
	}
	return feasible
}

func (e *LaserEVM) endTransaction(gs *state.GlobalState, end *TransactionEnd, trackGas bool) {
	tx := gs.CurrentTransaction()
	if !end.Revert {
		if tx != nil && tx.Kind == state.ContractCreation && end.ReturnData != nil {
			gs.WorldState.Account(tx.CalleeAccount.Address).Code = disassembler.FromBytes(end.ReturnData, e.resolver)
		}
		gs.WorldState.Node = gs.Node
		e.addWorldState(gs.WorldState)
	}
	if trackGas {
		e.addFinalState(gs)
	}
	if tx != nil {
		e.logger.Debug("Transaction ", tx.ID, " ended, revert: ", end.Revert)
	}
}

func (e *LaserEVM) addFinalState(gs *state.GlobalState) {
	e.finalMu.Lock()
	defer e.finalMu.Unlock()
	e.finalStates = append(e.finalStates, gs)
}

// manageCFG starts new graph nodes at jump targets, storage forks and returns.
func (e *LaserEVM) manageCFG(opcode string, newStates []*state.GlobalState) {
	switch {
	case opcode == "JUMP":
		for _, s := range newStates {
			e.newNodeState(s, cfg.Unconditional, nil)
		}
	case opcode == "JUMPI":
		for _, s := range newStates {
			e.newNodeState(s, cfg.Conditional, s.WorldState.Constraints.Last())
		}
	case (opcode == "SLOAD" || opcode == "SSTORE") && len(newStates) > 1:
		for _, s := range newStates {
			e.newNodeState(s, cfg.Conditional, s.WorldState.Constraints.Last())
		}
	case opcode == "RETURN":
		for _, s := range newStates {
			e.newNodeState(s, cfg.Return, nil)
		}
	}

	for _, s := range newStates {
		if node, ok := s.Node.(*cfg.Node); ok {
			node.AddState(s)
		}
	}
}

func (e *LaserEVM) newNodeState(gs *state.GlobalState, edgeType cfg.JumpType, condition *z3.Bool) {
	instr := gs.CurrentInstruction()
	if instr == nil {
		return
	}
	env := gs.Environment
	node := e.recorder.NewNode(env.ActiveAccount.ContractName, "", instr.Address)
	predecessor := gs.Node
	gs.Node = node

	if edgeType == cfg.Return {
		node.Flags |= cfg.CallReturn
	}

	sequence := gs.WorldState.TransactionSequence
	if len(sequence) > 0 && sequence[len(sequence)-1].Kind == state.ContractCreation {
		env.ActiveFunctionName = "constructor"
	} else if name, ok := env.Code.AddressToFunctionName[instr.Address]; ok {
		env.ActiveFunctionName = name
		node.Flags |= cfg.FuncEntry
		e.logger.Debug("- Entering function ", env.ActiveAccount.ContractName, ":", name)
	} else if instr.Address == 0 {
		env.ActiveFunctionName = "fallback"
	}
	node.FunctionName = env.ActiveFunctionName

	e.recorder.Link(node, predecessor, edgeType, condition, gs.WorldState.Constraints)
}

func addressHex(addr *z3.Bitvec) string {
	v, ok := addr.Value()
	if !ok {
		return ""
	}
	return v.Text(16)
}
