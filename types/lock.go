package types

import "sync/atomic"

// ExecutionLock is the single-flight guard shared by the scanner and the execution coordinator.
// At most one execution may be outstanding.
type ExecutionLock struct {
	held atomic.Bool
}

// TryAcquire sets the lock and reports whether the caller now owns it
func (l *ExecutionLock) TryAcquire() bool {
	return l.held.CompareAndSwap(false, true)
}

// Release clears the lock. Releasing a clear lock is a no-op.
func (l *ExecutionLock) Release() {
	l.held.Store(false)
}

// Held reports whether an execution is outstanding
func (l *ExecutionLock) Held() bool {
	return l.held.Load()
}
