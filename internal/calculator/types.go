package calculator

import (
	"errors"
	"math"

	"go-chi-calculator/internal/brain"
	"go-chi-calculator/internal/graph"
)

// TokenJSON is the wire form of a token. Exactly one field is set:
//
//	{"operand": 3}  {"variable": "M"}  {"operation": "+"}
type TokenJSON struct {
	Operand   *float64 `json:"operand,omitempty"`
	Variable  *string  `json:"variable,omitempty"`
	Operation *string  `json:"operation,omitempty"`
}

var (
	errTokenShape   = errors.New("token must set exactly one of operand, variable, operation")
	errVariableName = errors.New("variable name must not be empty")
	errOperand      = errors.New("operand must be finite")
)

// Token converts t to a brain token.
func (t TokenJSON) Token() (brain.Token, error) {
	n := 0
	for _, set := range []bool{t.Operand != nil, t.Variable != nil, t.Operation != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, errTokenShape
	}

	switch {
	case t.Operand != nil:
		if !finite(*t.Operand) {
			return nil, errOperand
		}
		return brain.Operand{Value: *t.Operand}, nil
	case t.Variable != nil:
		if *t.Variable == "" {
			return nil, errVariableName
		}
		return brain.Variable{Name: *t.Variable}, nil
	default:
		return brain.Operation{Symbol: *t.Operation}, nil
	}
}

func tokenJSON(t brain.Token) TokenJSON {
	switch t := t.(type) {
	case brain.Operand:
		v := t.Value
		return TokenJSON{Operand: &v}
	case brain.Variable:
		n := t.Name
		return TokenJSON{Variable: &n}
	case brain.Operation:
		s := t.Symbol
		return TokenJSON{Operation: &s}
	}
	return TokenJSON{}
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Tokens   []TokenJSON        `json:"tokens"`
	Bindings map[string]float64 `json:"bindings"`
}

// BindingsRequest is the optional JSON body for POST /calculator/sessions/{id}/evaluate.
type BindingsRequest struct {
	Bindings map[string]float64 `json:"bindings"`
}

// OperandRequest is the JSON body for POST /calculator/sessions/{id}/operand.
type OperandRequest struct {
	Value float64 `json:"value"`
}

// VariableRequest is the JSON body for POST /calculator/sessions/{id}/variable.
type VariableRequest struct {
	Name string `json:"name"`
}

// OperationRequest is the JSON body for POST /calculator/sessions/{id}/operation.
type OperationRequest struct {
	Symbol string `json:"symbol"`
}

// SetVariableRequest is the JSON body for PUT /calculator/sessions/{id}/variables/{name}.
type SetVariableRequest struct {
	Value float64 `json:"value"`
}

// VariableResponse is the JSON response for GET /calculator/sessions/{id}/variables/{name}.
type VariableResponse struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Persisted bool    `json:"persisted"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// VariablesResponse lists the variable values visible to a session.
type VariablesResponse struct {
	SessionID string             `json:"session_id"`
	Variables map[string]float64 `json:"variables"`
}

// EvaluationResponse is the JSON form of an evaluation.
type EvaluationResponse struct {
	SessionID string `json:"session_id,omitempty"`

	// Result is omitted when there is no result or it is not finite;
	// ResultText carries "+Inf", "-Inf" or "NaN" in the latter case.
	Result     *float64 `json:"result,omitempty"`
	ResultText string   `json:"result_text,omitempty"`

	Pending     bool        `json:"pending"`
	Description string      `json:"description"`
	Display     string      `json:"display"`
	Skipped     int         `json:"skipped"`
	Tokens      []TokenJSON `json:"tokens"`
}

func newEvaluationResponse(sessionID string, tokens []brain.Token, ev brain.Evaluation) EvaluationResponse {
	resp := EvaluationResponse{
		SessionID:   sessionID,
		Pending:     ev.Pending,
		Description: ev.Description,
		Display:     display(ev),
		Skipped:     ev.Skipped,
		Tokens:      make([]TokenJSON, 0, len(tokens)),
	}
	if ev.HasResult {
		resp.ResultText = resultText(ev.Result)
		if finite(ev.Result) {
			v := ev.Result
			resp.Result = &v
		}
	}
	for _, t := range tokens {
		resp.Tokens = append(resp.Tokens, tokenJSON(t))
	}
	return resp
}

// display renders the history line: the description followed by "..." while
// an operation is pending and "=" otherwise. An empty log shows " =".
func display(ev brain.Evaluation) string {
	if ev.Pending {
		return ev.Description + "..."
	}
	return ev.Description + "="
}

func resultText(v float64) string {
	return brain.FormatNumber(v)
}

// GraphPoint is one sample; Y is null for gaps.
type GraphPoint struct {
	X     float64  `json:"x"`
	Y     *float64 `json:"y"`
	Break bool     `json:"break,omitempty"`
}

// GraphResponse is the JSON response for GET /calculator/sessions/{id}/graph.
type GraphResponse struct {
	SessionID   string         `json:"session_id"`
	Description string         `json:"description"`
	Variable    string         `json:"variable"`
	From        float64        `json:"from"`
	To          float64        `json:"to"`
	Points      []GraphPoint   `json:"points"`
	Segments    [][]GraphPoint `json:"segments"`
}

func graphPoints(pts []graph.Point) []GraphPoint {
	out := make([]GraphPoint, 0, len(pts))
	for _, p := range pts {
		gp := GraphPoint{X: p.X, Break: p.Break}
		if !p.Gap {
			y := p.Y
			gp.Y = &y
		}
		out = append(out, gp)
	}
	return out
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
