package brain

// Brain is the calculator surface used by a keypad UI. It records input in a
// Log and evaluates on demand, so a change of variable bindings never needs
// the input to be replayed by the caller.
type Brain struct {
	log Log
}

// New returns a Brain with an empty log.
func New() *Brain {
	return &Brain{}
}

// Append records t. It is the generic form of SetOperand, SetVariable and
// PerformOperation.
func (b *Brain) Append(t Token) {
	b.log.Append(t)
}

// SetOperand records a number.
func (b *Brain) SetOperand(v float64) {
	b.log.Append(Operand{Value: v})
}

// SetVariable records a reference to the variable name.
func (b *Brain) SetVariable(name string) {
	b.log.Append(Variable{Name: name})
}

// PerformOperation records an operation symbol. Unknown symbols are kept in
// the log and ignored by Evaluate.
func (b *Brain) PerformOperation(symbol string) {
	b.log.Append(Operation{Symbol: symbol})
}

// Undo removes the last recorded token, if any.
func (b *Brain) Undo() bool {
	return b.log.Undo()
}

// Clear forgets all recorded input.
func (b *Brain) Clear() {
	b.log.Clear()
}

// Len returns the number of recorded tokens.
func (b *Brain) Len() int {
	return b.log.Len()
}

// Tokens returns a copy of the recorded input.
func (b *Brain) Tokens() []Token {
	return b.log.Snapshot()
}

// Evaluate folds the recorded input using bindings for variables.
func (b *Brain) Evaluate(bindings map[string]float64) Evaluation {
	return Evaluate(b.log.tokens, bindings)
}
