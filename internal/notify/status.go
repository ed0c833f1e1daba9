package notify

import "sync"

// Status tracks process-wide connectivity. The zero state is offline with
// no error; the connect/disconnect handlers are its only writers.
type Status struct {
	mu          sync.RWMutex
	online      bool
	criticalErr string
}

// NewStatus creates a Status in the initial offline state.
func NewStatus() *Status {
	return &Status{}
}

// SetOnline flips the connectivity flag. Going online clears any critical
// error left over from a failed connection attempt.
func (s *Status) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = online
	if online {
		s.criticalErr = ""
	}
}

// SetCriticalError records a connection-level failure message.
func (s *Status) SetCriticalError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criticalErr = msg
}

// Online reports the current connectivity flag.
func (s *Status) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// CriticalError returns the current failure message, empty when healthy.
func (s *Status) CriticalError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criticalErr
}
