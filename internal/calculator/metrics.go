package calculator

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"go-chi-calculator/internal/session"
)

// Metric instruments, initialized once via InitMetrics().
var (
	tokensCounter  metric.Int64Counter
	skippedCounter metric.Int64Counter
	evalCounter    metric.Int64Counter
	evalHistogram  metric.Float64Histogram
	errorCounter   metric.Int64Counter
	resultGauge    metric.Float64Gauge
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	tokensCounter, err = meter.Int64Counter("calculator.tokens.appended",
		metric.WithDescription("Tokens appended to session logs"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("creating tokens counter: %w", err)
	}

	skippedCounter, err = meter.Int64Counter("calculator.tokens.skipped",
		metric.WithDescription("Tokens ignored while evaluating (unknown symbols, missing operands)"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("creating skipped counter: %w", err)
	}

	evalCounter, err = meter.Int64Counter("calculator.evaluations.total",
		metric.WithDescription("Total number of token log evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return fmt.Errorf("creating evaluations counter: %w", err)
	}

	evalHistogram, err = meter.Float64Histogram("calculator.evaluation.duration",
		metric.WithDescription("Duration of token log evaluations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator request errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The last finite evaluation result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}

// RegisterSessionGauge exposes the number of live sessions on the
// Prometheus registry served at /metrics.
func RegisterSessionGauge(reg prometheus.Registerer, store *session.Store) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "calculator_sessions_active",
		Help: "Number of live calculator sessions.",
	}, func() float64 {
		return float64(store.Len())
	})

	if err := reg.Register(gauge); err != nil {
		return fmt.Errorf("registering session gauge: %w", err)
	}
	return nil
}
