package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/vango-dev/navrouter/pkg/router"
	"github.com/vango-dev/navrouter/pkg/transition"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "navrouter"

// TracingConfig configures transition tracing.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "navrouter").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// Context is the parent context for spans (default: background).
	Context context.Context
}

// TracingOption configures transition tracing.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly, bypassing the global provider.
func WithTracer(tracer trace.Tracer) TracingOption {
	return func(c *TracingConfig) {
		c.Tracer = tracer
	}
}

// WithParentContext sets the parent context spans are started from.
func WithParentContext(ctx context.Context) TracingOption {
	return func(c *TracingConfig) {
		c.Context = ctx
	}
}

// Tracing turns transition events into OpenTelemetry spans. It implements
// transition.Observer.
//
// Each selection produces a short "navrouter.select" span. A pendency
// episode produces a "navrouter.load" span that ends when the episode
// commits (status Ok or Error) or is superseded. Episodes are keyed by
// their token, so one Tracing can serve every connection.
//
// The tracer comes from the global provider unless WithTracer is given.
// Configure the provider in main() before starting the server:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
type Tracing struct {
	tracer trace.Tracer
	parent context.Context

	mu    sync.Mutex
	loads map[*transition.Token]trace.Span
}

// NewTracing creates a tracing observer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(config.TracerName)
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	return &Tracing{
		tracer: config.Tracer,
		parent: config.Context,
		loads:  make(map[*transition.Token]trace.Span),
	}
}

// Selected implements transition.Observer.
func (t *Tracing) Selected(url string, sel router.Selection) {
	route, outcome := routeLabel(sel)
	_, span := t.tracer.Start(t.parent, "navrouter.select",
		trace.WithAttributes(
			attribute.String("navrouter.url", url),
			attribute.String("navrouter.route", route),
			attribute.String("navrouter.outcome", outcome),
			attribute.Int("navrouter.params", len(sel.Params)),
		),
	)
	span.End()
}

// LoadStarted implements transition.Observer.
func (t *Tracing) LoadStarted(tok *transition.Token) {
	_, span := t.tracer.Start(t.parent, "navrouter.load",
		trace.WithAttributes(attribute.String("navrouter.url", tok.URL)),
		trace.WithTimestamp(time.Now()),
	)

	t.mu.Lock()
	t.loads[tok] = span
	t.mu.Unlock()
}

// LoadEnded implements transition.Observer.
func (t *Tracing) LoadEnded(tok *transition.Token, elapsed time.Duration, err error) {
	span := t.take(tok)
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Int64("navrouter.elapsed_ms", elapsed.Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Discarded implements transition.Observer. Stale signals arrive after
// their episode's span has ended and are not traced.
func (t *Tracing) Discarded(tok *transition.Token, reason string) {
	if reason != transition.DiscardSuperseded {
		return
	}
	span := t.take(tok)
	if span == nil {
		return
	}
	span.SetAttributes(attribute.String("navrouter.discard", reason))
	span.End()
}

// Open returns the number of load spans not yet ended.
func (t *Tracing) Open() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.loads)
}

func (t *Tracing) take(tok *transition.Token) trace.Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	span := t.loads[tok]
	delete(t.loads, tok)
	return span
}

var _ transition.Observer = (*Tracing)(nil)
