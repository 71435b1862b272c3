package brain

// Evaluation is the outcome of folding a token log.
type Evaluation struct {
	// Result is only meaningful when HasResult is true.
	Result    float64
	HasResult bool

	// Pending reports that a binary operation is waiting for its second
	// operand.
	Pending bool

	// Description is the text of the expression entered so far. It is a
	// single space when nothing has been entered.
	Description string

	// Skipped counts tokens that had no effect: unknown symbols and
	// operations entered without an operand.
	Skipped int
}

// EmptyDescription is the description of a log that produced nothing.
const EmptyDescription = " "

type quantity struct {
	value float64
	text  string
}

type pendingBinary struct {
	op    Binary
	first quantity
}

func (p *pendingBinary) perform(second quantity) quantity {
	return quantity{
		value: p.op.Apply(p.first.value, second.value),
		text:  p.op.Describe(p.first.text, second.text),
	}
}

// Evaluate folds tokens left to right with no operator precedence. Variables
// missing from bindings evaluate to 0. Evaluate does not modify tokens or
// bindings.
func Evaluate(tokens []Token, bindings map[string]float64) Evaluation {
	var (
		acc     *quantity
		pending *pendingBinary
		skipped int
	)

	resolve := func() {
		if pending != nil && acc != nil {
			q := pending.perform(*acc)
			acc = &q
			pending = nil
		}
	}

	for _, t := range tokens {
		switch t := t.(type) {
		case Operand:
			acc = &quantity{value: t.Value, text: FormatNumber(t.Value)}

		case Variable:
			acc = &quantity{value: bindings[t.Name], text: t.Name}

		case Operation:
			entry, ok := Lookup(t.Symbol)
			if !ok {
				skipped++
				continue
			}
			switch op := entry.(type) {
			case Constant:
				acc = &quantity{value: op.Value, text: t.Symbol}
			case Unary:
				if acc == nil {
					skipped++
					continue
				}
				acc = &quantity{value: op.Apply(acc.value), text: op.Describe(acc.text)}
			case Binary:
				resolve()
				if acc == nil {
					skipped++
					continue
				}
				pending = &pendingBinary{op: op, first: *acc}
				acc = nil
			case Equals:
				resolve()
			}

		default:
			skipped++
		}
	}

	ev := Evaluation{Skipped: skipped, Description: EmptyDescription}
	if acc != nil {
		ev.Result = acc.value
		ev.HasResult = true
		ev.Description = acc.text
	}
	if pending != nil {
		ev.Pending = true
		second := ""
		if acc != nil {
			second = acc.text
		}
		ev.Description = pending.op.Describe(pending.first.text, second)
	}
	return ev
}
