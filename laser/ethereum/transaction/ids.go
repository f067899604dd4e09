package transaction

import (
	"strconv"
	"sync/atomic"
)

// IDManager hands out transaction identifiers. One manager is shared by all
// transactions of an analysis run.
type IDManager struct {
	next atomic.Uint64
}

func NewIDManager() *IDManager {
	return &IDManager{}
}

// NextID returns a fresh identifier, greater than every identifier returned
// before. The first one is "1".
func (m *IDManager) NextID() string {
	return strconv.FormatUint(m.next.Add(1), 10)
}

// Peek returns the last identifier handed out, "0" if none.
func (m *IDManager) Peek() string {
	return strconv.FormatUint(m.next.Load(), 10)
}
