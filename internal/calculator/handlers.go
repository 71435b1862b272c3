package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/brain"
	"go-chi-calculator/internal/graph"
	"go-chi-calculator/internal/memory"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Graph sampling defaults.
const (
	DefaultGraphVariable = "M"
	DefaultGraphFrom     = -10.0
	DefaultGraphTo       = 10.0
	DefaultGraphSamples  = 200
	MaxGraphSamples      = 10000
)

// Memory is the persistent register file behind stored variables.
type Memory interface {
	Get(name string) (float64, error)
	Set(name string, v float64) error
	Delete(name string) error
	All() (map[string]float64, error)
}

// Handler serves the calculator endpoints.
type Handler struct {
	sessions *session.Store
	memory   Memory
}

// NewHandler returns a Handler over sessions. mem may be nil, in which case
// stored variables live only as long as their session.
func NewHandler(sessions *session.Store, mem Memory) *Handler {
	return &Handler{sessions: sessions, memory: mem}
}

// request bundles the per-request observability state shared by handlers.
type request struct {
	ctx       context.Context
	span      trace.Span
	logger    *zap.Logger
	requestID string
	opName    string
	w         http.ResponseWriter
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request, opName string) *request {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)

	return &request{
		ctx:       ctx,
		span:      span,
		logger:    observability.LoggerWithTrace(ctx),
		requestID: requestID,
		opName:    opName,
		w:         w,
	}
}

func (q *request) fail(msg string, err error, status int) {
	observability.RecordError(q.ctx, q.span, q.logger, errorCounter, q.opName, msg, err, status, q.w)
}

func (q *request) decode(r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	q.fail("invalid request body", err, http.StatusBadRequest)
	return false
}

// lookupSession resolves the {sessionID} URL parameter.
func (h *Handler) lookupSession(q *request, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	q.span.SetAttributes(attribute.String("calculator.session.id", id))

	sess, err := h.sessions.Get(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrNotFound) {
			status = http.StatusNotFound
		}
		q.fail("session not found", err, status)
		return nil, false
	}
	return sess, true
}

// baseBindings returns the persisted registers, or nil without a memory store.
func (h *Handler) baseBindings(q *request) (map[string]float64, bool) {
	if h.memory == nil {
		return nil, true
	}
	vars, err := h.memory.All()
	if err != nil {
		q.fail("reading memory registers", err, http.StatusInternalServerError)
		return nil, false
	}
	return vars, true
}

// evaluate runs fn under timing and records the evaluation on the span, the
// metrics and the log.
func (q *request) evaluate(tokens int, fn func() brain.Evaluation) brain.Evaluation {
	start := time.Now()
	ev := fn()
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	attrs := metric.WithAttributes(attribute.String("operation", q.opName))
	evalCounter.Add(q.ctx, 1, attrs)
	evalHistogram.Record(q.ctx, elapsed, attrs)
	if ev.Skipped > 0 {
		skippedCounter.Add(q.ctx, int64(ev.Skipped), attrs)
	}
	if ev.HasResult && finite(ev.Result) {
		resultGauge.Record(q.ctx, ev.Result, attrs)
		q.span.SetAttributes(attribute.Float64("calculator.result", ev.Result))
	}

	q.span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.Int("tokens", tokens),
		attribute.Bool("pending", ev.Pending),
		attribute.Int("skipped", ev.Skipped),
		attribute.Float64("duration_ms", elapsed),
	))

	if ev.Skipped > 0 {
		q.logger.Debug("tokens ignored during evaluation",
			zap.String("operation", q.opName),
			zap.Int("skipped", ev.Skipped),
			zap.String("request_id", q.requestID),
		)
	}
	q.logger.Info("calculator evaluation completed",
		zap.String("operation", q.opName),
		zap.Int("tokens", tokens),
		zap.Bool("pending", ev.Pending),
		zap.String("description", ev.Description),
		zap.String("request_id", q.requestID),
		zap.Float64("duration_ms", elapsed),
	)
	return ev
}

func (q *request) respond(status int, body any) {
	q.span.SetStatus(codes.Ok, "")
	q.w.Header().Set("Content-Type", "application/json")
	q.w.WriteHeader(status)
	if err := json.NewEncoder(q.w).Encode(body); err != nil {
		q.span.RecordError(err)
		q.logger.Error("writing response body",
			zap.String("operation", q.opName),
			zap.Int("status", status),
			zap.Error(err),
			zap.String("request_id", q.requestID),
		)
	}
}

// respondSession evaluates sess with the stored bindings and writes the result.
func (h *Handler) respondSession(q *request, sess *session.Session, override map[string]float64) {
	base, ok := h.baseBindings(q)
	if !ok {
		return
	}
	tokens := sess.Tokens()
	ev := q.evaluate(len(tokens), func() brain.Evaluation {
		return sess.Evaluate(base, override)
	})
	q.respond(http.StatusOK, newEvaluationResponse(sess.ID, tokens, ev))
}

func kind(t brain.Token) string {
	switch t.(type) {
	case brain.Operand:
		return "operand"
	case brain.Variable:
		return "variable"
	case brain.Operation:
		return "operation"
	}
	return "unknown"
}

// appendToken records t in the session named by the URL and responds with
// the new evaluation.
func (h *Handler) appendToken(w http.ResponseWriter, r *http.Request, opName string, decode func(q *request) (brain.Token, bool)) {
	q := h.start(w, r, opName)
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}
	t, ok := decode(q)
	if !ok {
		return
	}

	sess.Append(t)
	tokensCounter.Add(q.ctx, 1, metric.WithAttributes(attribute.String("kind", kind(t))))
	q.span.SetAttributes(attribute.String("calculator.token", t.String()))

	h.respondSession(q, sess, nil)
}

// ---------------------------------------------------------------------------
// Handlers — stateless
// ---------------------------------------------------------------------------

// Operations handles GET /calculator/operations
func (h *Handler) Operations(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "operations")
	defer q.span.End()

	q.respond(http.StatusOK, map[string][]string{"symbols": brain.Symbols()})
}

// Evaluate handles POST /calculator/evaluate. It folds a token list supplied
// in the request without creating a session.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "evaluate")
	defer q.span.End()

	var req EvaluateRequest
	if !q.decode(r, &req, false) {
		return
	}

	tokens := make([]brain.Token, 0, len(req.Tokens))
	for i, tj := range req.Tokens {
		t, err := tj.Token()
		if err != nil {
			q.fail("invalid token", fmt.Errorf("token %d: %w", i, err), http.StatusBadRequest)
			return
		}
		tokens = append(tokens, t)
	}

	ev := q.evaluate(len(tokens), func() brain.Evaluation {
		return brain.Evaluate(tokens, req.Bindings)
	})
	q.respond(http.StatusOK, newEvaluationResponse("", tokens, ev))
}

// ---------------------------------------------------------------------------
// Handlers — sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "session.create")
	defer q.span.End()

	sess := h.sessions.Create()
	q.span.SetAttributes(attribute.String("calculator.session.id", sess.ID))

	q.logger.Info("calculator session created",
		zap.String("session_id", sess.ID),
		zap.String("request_id", q.requestID),
	)
	q.respond(http.StatusCreated, SessionResponse{SessionID: sess.ID})
}

// DeleteSession handles DELETE /calculator/sessions/{sessionID}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "session.delete")
	defer q.span.End()

	id := chi.URLParam(r, "sessionID")
	if err := h.sessions.Delete(id); err != nil {
		q.fail("session not found", err, http.StatusNotFound)
		return
	}

	q.logger.Info("calculator session deleted",
		zap.String("session_id", id),
		zap.String("request_id", q.requestID),
	)
	q.span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// GetSession handles GET /calculator/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "session.get")
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}
	h.respondSession(q, sess, nil)
}

// SetOperand handles POST /calculator/sessions/{sessionID}/operand
func (h *Handler) SetOperand(w http.ResponseWriter, r *http.Request) {
	h.appendToken(w, r, "operand", func(q *request) (brain.Token, bool) {
		var req OperandRequest
		if !q.decode(r, &req, false) {
			return nil, false
		}
		if !finite(req.Value) {
			q.fail("invalid numeric input", errOperand, http.StatusBadRequest)
			return nil, false
		}
		return brain.Operand{Value: req.Value}, true
	})
}

// SetVariable handles POST /calculator/sessions/{sessionID}/variable
func (h *Handler) SetVariable(w http.ResponseWriter, r *http.Request) {
	h.appendToken(w, r, "variable", func(q *request) (brain.Token, bool) {
		var req VariableRequest
		if !q.decode(r, &req, false) {
			return nil, false
		}
		if req.Name == "" {
			q.fail("invalid variable name", errVariableName, http.StatusBadRequest)
			return nil, false
		}
		return brain.Variable{Name: req.Name}, true
	})
}

// PerformOperation handles POST /calculator/sessions/{sessionID}/operation.
// Unknown symbols are recorded and later ignored by evaluation.
func (h *Handler) PerformOperation(w http.ResponseWriter, r *http.Request) {
	h.appendToken(w, r, "operation", func(q *request) (brain.Token, bool) {
		var req OperationRequest
		if !q.decode(r, &req, false) {
			return nil, false
		}
		if _, known := brain.Lookup(req.Symbol); !known {
			q.logger.Debug("unknown operation symbol recorded",
				zap.String("symbol", req.Symbol),
				zap.String("request_id", q.requestID),
			)
		}
		return brain.Operation{Symbol: req.Symbol}, true
	})
}

// Undo handles POST /calculator/sessions/{sessionID}/undo
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "undo")
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}
	removed := sess.Undo()
	q.span.SetAttributes(attribute.Bool("calculator.undo.removed", removed))

	h.respondSession(q, sess, nil)
}

// Clear handles POST /calculator/sessions/{sessionID}/clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "clear")
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}
	sess.Clear()

	h.respondSession(q, sess, nil)
}

// EvaluateSession handles POST /calculator/sessions/{sessionID}/evaluate. It
// re-evaluates the session log with extra bindings, leaving the session
// unchanged.
func (h *Handler) EvaluateSession(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "session.evaluate")
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}
	var req BindingsRequest
	if !q.decode(r, &req, true) {
		return
	}

	h.respondSession(q, sess, req.Bindings)
}

// Variables handles GET /calculator/sessions/{sessionID}/variables
func (h *Handler) Variables(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "variables")
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}
	vars, ok := h.baseBindings(q)
	if !ok {
		return
	}
	if vars == nil {
		vars = make(map[string]float64)
	}
	for name, v := range sess.Vars() {
		vars[name] = v
	}

	q.respond(http.StatusOK, VariablesResponse{SessionID: sess.ID, Variables: vars})
}

// StoreVariable handles PUT /calculator/sessions/{sessionID}/variables/{name}.
// It stores a value for a variable and re-evaluates, so every expression that
// uses the variable reflects the new value.
func (h *Handler) StoreVariable(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "variables.store")
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	var req SetVariableRequest
	if !q.decode(r, &req, false) {
		return
	}
	if !finite(req.Value) {
		q.fail("invalid numeric input", errOperand, http.StatusBadRequest)
		return
	}

	if h.memory != nil {
		if err := h.memory.Set(name, req.Value); err != nil {
			q.fail("storing memory register", err, http.StatusInternalServerError)
			return
		}
	}
	sess.SetVar(name, req.Value)

	q.span.SetAttributes(
		attribute.String("calculator.variable", name),
		attribute.Float64("calculator.variable.value", req.Value),
	)
	q.logger.Info("calculator variable stored",
		zap.String("session_id", sess.ID),
		zap.String("variable", name),
		zap.Float64("value", req.Value),
		zap.Bool("persisted", h.memory != nil),
		zap.String("request_id", q.requestID),
	)

	h.respondSession(q, sess, nil)
}

// Variable handles GET /calculator/sessions/{sessionID}/variables/{name}. A
// session value shadows the persisted register of the same name.
func (h *Handler) Variable(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "variables.get")
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	q.span.SetAttributes(attribute.String("calculator.variable", name))

	if v, ok := sess.Var(name); ok {
		q.respond(http.StatusOK, VariableResponse{Name: name, Value: v})
		return
	}
	if h.memory == nil {
		q.fail("variable not found", memory.ErrNoVar, http.StatusNotFound)
		return
	}
	v, err := h.memory.Get(name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, memory.ErrNoVar) {
			status = http.StatusNotFound
		}
		q.fail("variable not found", err, status)
		return
	}
	q.respond(http.StatusOK, VariableResponse{Name: name, Value: v, Persisted: true})
}

// ForgetVariable handles DELETE /calculator/sessions/{sessionID}/variables/{name}.
// The variable is removed from the session and from persisted memory, and
// the log is re-evaluated with it unbound.
func (h *Handler) ForgetVariable(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "variables.delete")
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	q.span.SetAttributes(attribute.String("calculator.variable", name))

	if h.memory != nil {
		if err := h.memory.Delete(name); err != nil {
			q.fail("deleting memory register", err, http.StatusInternalServerError)
			return
		}
	}
	sess.DeleteVar(name)

	q.logger.Info("calculator variable deleted",
		zap.String("session_id", sess.ID),
		zap.String("variable", name),
		zap.String("request_id", q.requestID),
	)

	h.respondSession(q, sess, nil)
}

// Graph handles GET /calculator/sessions/{sessionID}/graph. It samples the
// session's expression across a range of one free variable. Every other
// variable evaluates to zero while graphing.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	q := h.start(w, r, "graph")
	defer q.span.End()

	sess, ok := h.lookupSession(q, r)
	if !ok {
		return
	}

	params, err := parseGraphParams(r)
	if err != nil {
		q.fail("invalid graph parameters", err, http.StatusBadRequest)
		return
	}

	tokens := sess.Tokens()
	ev := brain.Evaluate(tokens, nil)
	if ev.Pending {
		q.fail("expression is pending", fmt.Errorf("cannot graph %q while an operation is pending", ev.Description), http.StatusConflict)
		return
	}

	q.span.SetAttributes(
		attribute.String("graph.variable", params.variable),
		attribute.Float64("graph.from", params.rng.From),
		attribute.Float64("graph.to", params.rng.To),
		attribute.Int("graph.samples", params.samples),
	)

	start := time.Now()
	plot, err := graph.Sample(graph.ForTokens(tokens, params.variable), params.rng, params.samples, params.opts)
	if err != nil {
		q.fail("invalid graph parameters", err, http.StatusBadRequest)
		return
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	attrs := metric.WithAttributes(attribute.String("operation", q.opName))
	evalCounter.Add(q.ctx, int64(params.samples), attrs)
	evalHistogram.Record(q.ctx, elapsed, attrs)

	segs := plot.Segments()
	resp := GraphResponse{
		SessionID:   sess.ID,
		Description: ev.Description,
		Variable:    params.variable,
		From:        params.rng.From,
		To:          params.rng.To,
		Points:      graphPoints(plot.Points),
		Segments:    make([][]GraphPoint, 0, len(segs)),
	}
	for _, seg := range segs {
		resp.Segments = append(resp.Segments, graphPoints(seg))
	}

	q.logger.Info("calculator graph sampled",
		zap.String("session_id", sess.ID),
		zap.String("variable", params.variable),
		zap.Int("samples", params.samples),
		zap.Int("segments", len(segs)),
		zap.String("request_id", q.requestID),
		zap.Float64("duration_ms", elapsed),
	)
	q.respond(http.StatusOK, resp)
}

type graphParams struct {
	variable string
	rng      graph.Range
	samples  int
	opts     graph.Options
}

func parseGraphParams(r *http.Request) (graphParams, error) {
	p := graphParams{
		variable: DefaultGraphVariable,
		rng:      graph.Range{From: DefaultGraphFrom, To: DefaultGraphTo},
		samples:  DefaultGraphSamples,
	}
	query := r.URL.Query()

	if v := query.Get("variable"); v != "" {
		p.variable = v
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"from", &p.rng.From},
		{"to", &p.rng.To},
		{"max_jump", &p.opts.MaxJump},
	}
	for _, f := range floats {
		s := query.Get(f.key)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, fmt.Errorf("parsing %s: %w", f.key, err)
		}
		*f.dst = v
	}

	if s := query.Get("samples"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("parsing samples: %w", err)
		}
		p.samples = n
	}
	if p.samples > MaxGraphSamples {
		return p, fmt.Errorf("samples must be at most %d, got %d", MaxGraphSamples, p.samples)
	}
	return p, nil
}
