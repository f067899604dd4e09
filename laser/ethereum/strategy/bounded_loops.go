package strategy

import (
	"go-laser/laser/ethereum/state"
	"go-laser/logging"
	"golang.org/x/exp/slices"
)

// creationLoopBound lets constructors unroll loops further than the
// configured bound.
const creationLoopBound = 8

// JumpdestCountAnnotation records the addresses of the JUMPDESTs a state passed.
type JumpdestCountAnnotation struct {
	Trace []int
}

func (j *JumpdestCountAnnotation) PersistToWorldState() bool { return false }
func (j *JumpdestCountAnnotation) PersistOverCalls() bool    { return false }

func (j *JumpdestCountAnnotation) Copy() state.StateAnnotation {
	return &JumpdestCountAnnotation{Trace: slices.Clone(j.Trace)}
}

// BoundedLoops drops states that entered a loop more than Bound times.
type BoundedLoops struct {
	Strategy
	Bound  int
	logger *logging.Logger
}

func NewBoundedLoops(inner Strategy, bound int) *BoundedLoops {
	return &BoundedLoops{
		Strategy: inner,
		Bound:    bound,
		logger:   logging.GlobalLogger.NewSubLogger("service", "strategy"),
	}
}

func (b *BoundedLoops) Next() *state.GlobalState {
	for {
		s := b.Strategy.Next()
		if s == nil {
			return nil
		}
		instr := s.CurrentInstruction()
		if instr == nil {
			return s
		}

		annotation := jumpdestAnnotation(s)
		annotation.Trace = append(annotation.Trace, instr.Address)
		if instr.Opcode != "JUMPDEST" {
			return s
		}

		count := GetLoopCount(annotation.Trace)
		tx := s.CurrentTransaction()
		if tx != nil && tx.Kind == state.ContractCreation && count < creationLoopBound {
			return s
		}
		if count > b.Bound {
			b.logger.Debug("loop bound reached, skipping state at address ", instr.Address)
			continue
		}
		return s
	}
}

func jumpdestAnnotation(s *state.GlobalState) *JumpdestCountAnnotation {
	for _, a := range s.Annotations() {
		if j, ok := a.(*JumpdestCountAnnotation); ok {
			return j
		}
	}
	j := &JumpdestCountAnnotation{}
	s.Annotate(j)
	return j
}

// GetLoopCount returns how often the block ending the trace repeats
// back to back, or 0 when the last jump was not seen before.
func GetLoopCount(trace []int) int {
	length := len(trace)
	found := false
	var i int
	for i = length - 3; i > 0; i-- {
		if trace[i] == trace[length-2] && trace[i+1] == trace[length-1] {
			found = true
			break
		}
	}
	if !found {
		return 0
	}
	key := trace[i+1 : length-1]
	size := length - i - 2
	return countKey(trace, key, i+1, size)
}

func countKey(trace []int, key []int, start, size int) int {
	count := 1
	for i := start; i >= 0; i -= size {
		if i+size > len(trace) || !slices.Equal(trace[i:i+size], key) {
			break
		}
		count++
	}
	return count
}
