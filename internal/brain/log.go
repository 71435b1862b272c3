package brain

import "slices"

// Log is the ordered record of tokens entered in a session. It holds no
// numeric state; Evaluate derives everything from a snapshot.
//
// A Log has a single writer. Callers sharing one across goroutines must
// serialise Append, Undo and Clear themselves.
type Log struct {
	tokens []Token
}

// Append adds t at the end of the log.
func (l *Log) Append(t Token) {
	l.tokens = append(l.tokens, t)
}

// Undo removes the last token. It reports whether a token was removed; an
// empty log is left unchanged.
func (l *Log) Undo() bool {
	if len(l.tokens) == 0 {
		return false
	}
	l.tokens[len(l.tokens)-1] = nil
	l.tokens = l.tokens[:len(l.tokens)-1]
	return true
}

// Clear empties the log.
func (l *Log) Clear() {
	l.tokens = nil
}

// Len returns the number of tokens in the log.
func (l *Log) Len() int {
	return len(l.tokens)
}

// Snapshot returns a copy of the tokens in entry order.
func (l *Log) Snapshot() []Token {
	return slices.Clone(l.tokens)
}
