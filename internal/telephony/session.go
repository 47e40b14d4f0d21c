package telephony

import (
	"sync"
	"time"
)

// callState tracks where a single call is in the menu tree. Earlier versions
// of this flow kept these flags in process globals, which breaks as soon as
// two calls overlap; state is keyed by CallSid instead.
type callState struct {
	greeted   bool
	prompted  bool
	lastTouch time.Time
}

// Sessions holds per-call menu state.
type Sessions struct {
	mu    sync.Mutex
	calls map[string]*callState
	ttl   time.Duration
}

// NewSessions creates a session table. Calls idle longer than ttl are evicted
// lazily on access.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Sessions{calls: make(map[string]*callState), ttl: ttl}
}

func (s *Sessions) get(callSid string) *callState {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for sid, st := range s.calls {
		if now.Sub(st.lastTouch) > s.ttl {
			delete(s.calls, sid)
		}
	}

	st, ok := s.calls[callSid]
	if !ok {
		st = &callState{}
		s.calls[callSid] = st
	}
	st.lastTouch = now
	return st
}

// FirstContact reports whether this is the call's first visit to the main
// menu, flipping the flag as a side effect.
func (s *Sessions) FirstContact(callSid string) bool {
	st := s.get(callSid)
	first := !st.greeted
	st.greeted = true
	return first
}

// FirstPrompt reports whether the caller still needs the "state your
// question" prompt for the current intent, flipping the flag as a side
// effect.
func (s *Sessions) FirstPrompt(callSid string) bool {
	st := s.get(callSid)
	first := !st.prompted
	st.prompted = true
	return first
}

// ResetPrompt re-arms the intent prompt, used when the caller returns to the
// main menu.
func (s *Sessions) ResetPrompt(callSid string) {
	st := s.get(callSid)
	st.prompted = false
}

// End forgets a call entirely.
func (s *Sessions) End(callSid string) {
	s.mu.Lock()
	delete(s.calls, callSid)
	s.mu.Unlock()
}
