// ABOUTME: Process-wide session state: logged-in identity and current QR challenge
// ABOUTME: Mutated only by the policy; read-only to the operator surfaces

package bot

import "sync"

// State tracks the single logical logged-in identity and the most recent
// rendered QR challenge. The policy owns all mutation; the console and HTTP
// surfaces only read.
type State struct {
	mu           sync.RWMutex
	loggedInName string
	qrSVG        string
}

// NewState returns an empty (logged-out) state.
func NewState() *State {
	return &State{}
}

// LoggedInName returns the current identity's display name, empty when
// logged out.
func (s *State) LoggedInName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedInName
}

// QRSVG returns the most recently rendered QR challenge, empty before the
// first scan event.
func (s *State) QRSVG() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.qrSVG
}

func (s *State) setLoggedIn(name string) {
	s.mu.Lock()
	s.loggedInName = name
	s.mu.Unlock()
}

func (s *State) clearLoggedIn() {
	s.setLoggedIn("")
}

func (s *State) setQRSVG(svg string) {
	s.mu.Lock()
	s.qrSVG = svg
	s.mu.Unlock()
}
