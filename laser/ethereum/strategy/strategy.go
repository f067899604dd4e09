// Package strategy decides the order in which the engine explores states.
package strategy

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"go-laser/laser/ethereum/state"
)

// Strategy is the engine's work list. Implementations are not safe for
// concurrent use; the engine serializes access.
type Strategy interface {
	Push(states ...*state.GlobalState)
	// Next removes and returns the next state, or nil when none is available.
	Next() *state.GlobalState
	Len() int
	// RunCheck reports whether the engine should prune infeasible states
	// before pushing them.
	RunCheck() bool
}

type workList struct {
	list *doublylinkedlist.List
}

func newWorkList() workList {
	return workList{list: doublylinkedlist.New()}
}

func (w workList) Push(states ...*state.GlobalState) {
	for _, s := range states {
		w.list.Add(s)
	}
}

func (w workList) Len() int {
	return w.list.Size()
}

func (w workList) RunCheck() bool {
	return true
}

func (w workList) take(index int) *state.GlobalState {
	v, ok := w.list.Get(index)
	if !ok {
		return nil
	}
	w.list.Remove(index)
	return v.(*state.GlobalState)
}

// BreadthFirst explores states in the order they were found.
type BreadthFirst struct {
	workList
}

func NewBreadthFirst() *BreadthFirst {
	return &BreadthFirst{newWorkList()}
}

func (b *BreadthFirst) Next() *state.GlobalState {
	return b.take(0)
}

// DepthFirst explores the most recently found state first.
type DepthFirst struct {
	workList
}

func NewDepthFirst() *DepthFirst {
	return &DepthFirst{newWorkList()}
}

func (d *DepthFirst) Next() *state.GlobalState {
	return d.take(d.list.Size() - 1)
}
