// Package cfg records the control-flow graph built during exploration.
package cfg

import (
	"sync"
	"sync/atomic"

	"go-laser/laser/ethereum/state"
	"go-laser/laser/smt/z3"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type JumpType int

const (
	Conditional JumpType = iota + 1
	Unconditional
	Call
	Return
	Transaction
)

func (j JumpType) String() string {
	switch j {
	case Conditional:
		return "CONDITIONAL"
	case Unconditional:
		return "UNCONDITIONAL"
	case Call:
		return "CALL"
	case Return:
		return "RETURN"
	case Transaction:
		return "Transaction"
	default:
		return "UNKNOWN"
	}
}

// NodeFlag marks nodes that start a function or call return.
type NodeFlag int

const (
	FuncEntry NodeFlag = 1 << iota
	CallReturn
)

type Node struct {
	uid          int
	ContractName string
	FunctionName string
	StartAddr    int
	Flags        NodeFlag

	// Constraints is a snapshot of the predecessor's path constraints, taken
	// when the incoming edge is created.
	Constraints state.Constraints

	mu     sync.Mutex
	states []*state.GlobalState
}

// UID returns the identifier of the node within its recorder.
func (n *Node) UID() int {
	return n.uid
}

// AddState appends a state that executes in this node.
func (n *Node) AddState(s *state.GlobalState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, s)
}

// States returns the states of the node in insertion order.
func (n *Node) States() []*state.GlobalState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*state.GlobalState(nil), n.states...)
}

type Edge struct {
	From      int
	To        int
	Type      JumpType
	Condition *z3.Bool
}

// Recorder owns the nodes and edges of one analysis run. Recording is fixed
// at construction; a disabled recorder still hands out nodes with unique uids
// but keeps none of them.
type Recorder struct {
	enabled bool
	nextUID atomic.Int64

	mu    sync.Mutex
	nodes map[int]*Node
	edges []Edge
}

func NewRecorder(enabled bool) *Recorder {
	return &Recorder{
		enabled: enabled,
		nodes:   make(map[int]*Node),
		edges:   make([]Edge, 0),
	}
}

// Enabled reports whether the recorder keeps nodes and edges.
func (r *Recorder) Enabled() bool {
	return r.enabled
}

// NewNode allocates a node with a fresh uid. It is not registered.
func (r *Recorder) NewNode(contractName, functionName string, startAddr int) *Node {
	return &Node{
		uid:          int(r.nextUID.Add(1)) - 1,
		ContractName: contractName,
		FunctionName: functionName,
		StartAddr:    startAddr,
	}
}

// Link registers node and, when predecessor is set, adds an edge from it and
// snapshots constraints onto node. Both happen under one lock so readers never
// see the edge without its target.
func (r *Recorder) Link(node *Node, predecessor state.NodeRef, edgeType JumpType, condition *z3.Bool, constraints state.Constraints) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[node.uid] = node
	if predecessor == nil {
		return
	}
	r.edges = append(r.edges, Edge{
		From:      predecessor.UID(),
		To:        node.uid,
		Type:      edgeType,
		Condition: condition,
	})
	node.Constraints = constraints.Copy()
}

// Node returns the registered node with uid.
func (r *Recorder) Node(uid int) (*Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[uid]
	return n, ok
}

// Nodes returns the registered nodes ordered by uid.
func (r *Recorder) Nodes() []*Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	uids := maps.Keys(r.nodes)
	slices.Sort(uids)
	out := make([]*Node, 0, len(uids))
	for _, uid := range uids {
		out = append(out, r.nodes[uid])
	}
	return out
}

// Edges returns the edges in insertion order.
func (r *Recorder) Edges() []Edge {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Edge(nil), r.edges...)
}
