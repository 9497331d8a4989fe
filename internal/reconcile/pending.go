package reconcile

import "slices"

// Pending is the ordered set of services on the current endpoint that
// have not been seen in the terminal status yet.
type Pending []string

// NewPending returns the pending set for a fresh endpoint. Duplicate
// names are kept once.
func NewPending(services []string) Pending {
	p := make(Pending, 0, len(services))
	for _, s := range services {
		if !slices.Contains(p, s) {
			p = append(p, s)
		}
	}
	return p
}

// Contains reports whether name is still pending.
func (p Pending) Contains(name string) bool { return slices.Contains(p, name) }

// Remove returns the set without name. The receiver is not modified.
func (p Pending) Remove(name string) Pending {
	i := slices.Index(p, name)
	if i < 0 {
		return p
	}
	out := make(Pending, 0, len(p)-1)
	out = append(out, p[:i]...)
	return append(out, p[i+1:]...)
}

// Empty reports whether every service has converged.
func (p Pending) Empty() bool { return len(p) == 0 }
