package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// FrameTracer wraps each simulation frame in a span and records its
// duration on the OpenTelemetry meter.
type FrameTracer struct {
	scene    string
	tracer   trace.Tracer
	duration metric.Float64Histogram
	frames   metric.Int64Counter
}

// NewFrameTracer creates a tracer for frames of the named scene.
func NewFrameTracer(p *Provider, scene string) (*FrameTracer, error) {
	duration, err := p.Meter().Float64Histogram("prefabpool.frame.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Simulation frame duration"))
	if err != nil {
		return nil, fmt.Errorf("failed to create frame histogram: %w", err)
	}
	frames, err := p.Meter().Int64Counter("prefabpool.frames",
		metric.WithDescription("Simulation frames run"))
	if err != nil {
		return nil, fmt.Errorf("failed to create frame counter: %w", err)
	}
	return &FrameTracer{
		scene:    scene,
		tracer:   p.Tracer(),
		duration: duration,
		frames:   frames,
	}, nil
}

// TraceFrame runs fn inside a "frame" span. The span records the frame
// number and fn's error, if any.
func (ft *FrameTracer) TraceFrame(ctx context.Context, frame int, fn func(ctx context.Context) error) error {
	attrs := []attribute.KeyValue{
		attribute.String("scene", ft.scene),
	}
	ctx, span := ft.tracer.Start(ctx, "frame", trace.WithAttributes(append(attrs, attribute.Int("frame", frame))...))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	ft.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	ft.frames.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

// AddEvent annotates the span in ctx, if any.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// LogFields returns trace_id and span_id fields for the span in ctx.
func LogFields(ctx context.Context) []zap.Field {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
