// Package session keeps one calculator brain per client session.
package session

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"go-chi-calculator/internal/brain"
)

// Session is one client's calculator: its token log and the variable values
// stored with it. Methods are safe for concurrent use; mutations are
// serialised so the log keeps a single writer.
type Session struct {
	ID string

	mu    sync.Mutex
	brain *brain.Brain
	vars  map[string]float64

	lastUsed atomic.Int64
}

func newSession(id string, now time.Time) *Session {
	s := &Session{
		ID:    id,
		brain: brain.New(),
		vars:  make(map[string]float64),
	}
	s.touch(now)
	return s
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

// LastUsed returns when the session was last fetched from its Store.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

// Append records t.
func (s *Session) Append(t brain.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brain.Append(t)
}

// Undo removes the last token and reports whether there was one.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brain.Undo()
}

// Clear empties the log and forgets stored variables.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brain.Clear()
	clear(s.vars)
}

// SetVar stores a variable value used by later evaluations.
func (s *Session) SetVar(name string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = v
}

// Var returns the stored value of name.
func (s *Session) Var(name string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[name]
	return v, ok
}

// DeleteVar forgets the stored value of name.
func (s *Session) DeleteVar(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vars, name)
}

// Vars returns a copy of the stored variables.
func (s *Session) Vars() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.vars)
}

// Tokens returns a copy of the token log.
func (s *Session) Tokens() []brain.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brain.Tokens()
}

// Len returns the number of recorded tokens.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brain.Len()
}

// Evaluate folds the log. Bindings are layered: base first, then the
// session's stored variables, then override.
func (s *Session) Evaluate(base, override map[string]float64) brain.Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()

	bindings := make(map[string]float64, len(base)+len(s.vars)+len(override))
	maps.Copy(bindings, base)
	maps.Copy(bindings, s.vars)
	maps.Copy(bindings, override)
	return s.brain.Evaluate(bindings)
}
