package services

import (
	"sync"

	"github.com/google/uuid"
)

// childLocks serializes writes per child. The conflict detector's
// check-then-act sequence is only safe when no other scheduler mutates the
// same child's sessions between the check and the write.
type childLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newChildLocks() *childLocks {
	return &childLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (c *childLocks) Lock(childID uuid.UUID) func() {
	c.mu.Lock()
	l, ok := c.locks[childID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[childID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
