package resilience

import "sync"

// Latch tracks in-flight keys so a second identical submission can be
// refused while the first is still running. Unlike SingleFlight it does not
// share the first call's result: a refused caller gets nothing, which is
// what a mutation resubmit should see.
type Latch struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// TryAcquire reports whether the key was free. The caller that got true
// must Release the key when its work finishes.
func (l *Latch) TryAcquire(key string) bool {
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inFlight == nil {
		l.inFlight = make(map[string]struct{})
	}
	if _, busy := l.inFlight[key]; busy {
		return false
	}
	l.inFlight[key] = struct{}{}
	return true
}

func (l *Latch) Release(key string) {
	if key == "" {
		return
	}

	l.mu.Lock()
	delete(l.inFlight, key)
	l.mu.Unlock()
}
