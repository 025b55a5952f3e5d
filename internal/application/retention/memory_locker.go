package retention

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker implementación in-process de CycleLocker. Suficiente para una
// sola instancia del API y para tests; con varias instancias se usa el locker
// Redis de infraestructura.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker construye el locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

// Obtain toma el lock o devuelve ErrLockNotObtained si ya está tomado.
func (l *MemoryLocker) Obtain(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrLockNotObtained
	}
	l.held[key] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}
