package brain

import "strconv"

// Token is one unit of user input recorded in a Log. The set of
// implementations is closed: Operand, Variable and Operation.
type Token interface {
	isToken()
	String() string
}

// Operand is a number entered by the user.
type Operand struct {
	Value float64
}

// Variable is a reference to a named value resolved at evaluation time.
type Variable struct {
	Name string
}

// Operation is an operation symbol such as "+", "√" or "=".
type Operation struct {
	Symbol string
}

func (Operand) isToken()   {}
func (Variable) isToken()  {}
func (Operation) isToken() {}

func (t Operand) String() string   { return strconv.FormatFloat(t.Value, 'g', -1, 64) }
func (t Variable) String() string  { return t.Name }
func (t Operation) String() string { return t.Symbol }
