package core

import "sync"

// Shim is a process-wide component that must be off while certificates are
// read from an archive.
type Shim interface {
	Disable()
	Enable()
}

type noopShim struct{}

func (noopShim) Disable() {}
func (noopShim) Enable()  {}

// DefaultGuard serializes certificate reads for the whole process.
var DefaultGuard = NewCertReadGuard(noopShim{})

type CertReadGuard struct {
	mu   sync.Mutex
	shim Shim
}

func NewCertReadGuard(shim Shim) *CertReadGuard {
	if shim == nil {
		shim = noopShim{}
	}
	return &CertReadGuard{shim: shim}
}

// Acquire blocks until no other lease is held, then disables the shim.
func (g *CertReadGuard) Acquire() *Lease {
	g.mu.Lock()
	g.shim.Disable()
	return &Lease{guard: g}
}

type Lease struct {
	guard *CertReadGuard
	once  sync.Once
}

// Release re-enables the shim. Calling it more than once is a no-op.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.guard.shim.Enable()
		l.guard.mu.Unlock()
	})
}
