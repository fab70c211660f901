package resolution

import (
	"sync"
)

// GoalLocker serializes mutations per goal subtree. Aggregation reads the
// children before writing derived parent fields, so two writers on the
// same goal could lose updates. Different goals proceed in parallel.
type GoalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGoalLocker() *GoalLocker {
	return &GoalLocker{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the exclusive lock for the given goal and returns the
// unlock func.
func (gl *GoalLocker) Lock(goalID string) func() {
	gl.mu.Lock()
	l, ok := gl.locks[goalID]
	if !ok {
		l = &sync.Mutex{}
		gl.locks[goalID] = l
	}
	gl.mu.Unlock()

	l.Lock()
	return l.Unlock
}
