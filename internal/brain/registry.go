package brain

import "math"

// Entry is the behaviour registered for an operation symbol. Implementations
// are Constant, Unary, Binary and Equals.
type Entry interface {
	isEntry()
}

// Constant replaces the accumulator with a fixed value described by its symbol.
type Constant struct {
	Value float64
}

// Unary transforms the accumulator.
type Unary struct {
	Apply    func(float64) float64
	Describe func(string) string
}

// Binary combines a captured first operand with the next accumulator.
type Binary struct {
	Apply    func(float64, float64) float64
	Describe func(string, string) string
}

// Equals resolves a pending binary operation.
type Equals struct{}

func (Constant) isEntry() {}
func (Unary) isEntry()    {}
func (Binary) isEntry()   {}
func (Equals) isEntry()   {}

func infix(op string) func(string, string) string {
	return func(a, b string) string { return a + op + b }
}

// symbols lists the canonical symbols in keypad order.
var symbols = []string{"π", "e", "cos", "sin", "√", "x²", "x⁻¹", "±", "×", "÷", "+", "−", "="}

var registry = func() map[string]Entry {
	m := map[string]Entry{
		"π": Constant{Value: math.Pi},
		"e": Constant{Value: math.E},

		"cos": Unary{Apply: math.Cos, Describe: func(s string) string { return "cos(" + s + ")" }},
		"sin": Unary{Apply: math.Sin, Describe: func(s string) string { return "sin(" + s + ")" }},
		"√":   Unary{Apply: math.Sqrt, Describe: func(s string) string { return "√(" + s + ")" }},
		"x²":  Unary{Apply: func(x float64) float64 { return x * x }, Describe: func(s string) string { return "(" + s + ")²" }},
		"x⁻¹": Unary{Apply: func(x float64) float64 { return 1 / x }, Describe: func(s string) string { return s + "⁻¹" }},
		"±":   Unary{Apply: func(x float64) float64 { return -x }, Describe: func(s string) string { return "-" + s }},

		"×": Binary{Apply: func(a, b float64) float64 { return a * b }, Describe: infix("×")},
		"÷": Binary{Apply: func(a, b float64) float64 { return a / b }, Describe: infix("÷")},
		"+": Binary{Apply: func(a, b float64) float64 { return a + b }, Describe: infix("+")},
		"−": Binary{Apply: func(a, b float64) float64 { return a - b }, Describe: infix("−")},

		"=": Equals{},
	}
	// ASCII spellings sent by plain keyboards.
	m["-"] = m["−"]
	m["*"] = m["×"]
	m["/"] = m["÷"]
	return m
}()

// Lookup returns the entry registered for symbol.
func Lookup(symbol string) (Entry, bool) {
	e, ok := registry[symbol]
	return e, ok
}

// Symbols returns the canonical operation symbols in keypad order.
func Symbols() []string {
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out
}
