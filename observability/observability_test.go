package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("nanodraw")
	if cfg.ServiceName != "nanodraw" {
		t.Errorf("expected ServiceName 'nanodraw', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, "nanodraw", "dev", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestInitEnabled(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	// Exporters connect lazily, so no collector is needed to initialize.
	shutdown, err := Init(context.Background(), Config{Enabled: true, Insecure: true}, "nanodraw", "dev", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		if got := samplerFor(tt.rate).Description(); got != tt.want {
			t.Errorf("samplerFor(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestStartSpanRecordsAttributesAndErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanGenerate)
	SetSpanAttribute(ctx, AttrCallID, "call-1")
	SetSpanAttribute(ctx, AttrProgress, 42.5)
	SetSpanAttribute(ctx, AttrEvents, 3)
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name() != SpanGenerate {
		t.Errorf("span name = %q", got.Name())
	}
	if got.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", got.Status())
	}
	attrs := map[string]bool{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = true
	}
	for _, key := range []string{AttrCallID, AttrProgress, AttrEvents} {
		if !attrs[key] {
			t.Errorf("missing attribute %s", key)
		}
	}
}

func TestSetSpanAttributeNoSpan(t *testing.T) {
	// Must not panic without a span in context.
	SetSpanAttribute(context.Background(), "key", "value")
	SetSpanError(context.Background(), errors.New("x"))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumInt(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum, got %T", agg)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestDrawMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewDrawMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	m.RecordGenerationStart(ctx)
	m.RecordStreamLines(ctx, 4, 1)
	m.RecordGenerationEnd(ctx, "nano-banana-pro", "succeeded", 2*time.Second)
	m.RecordLookup(ctx, "running")
	m.RecordStreamLines(ctx, 0, 0)

	data := collect(t, reader)
	if got := sumInt(t, data[MetricGenerationTotal]); got != 1 {
		t.Errorf("generation total = %d", got)
	}
	if got := sumInt(t, data[MetricGenerationActive]); got != 0 {
		t.Errorf("active generations = %d", got)
	}
	if got := sumInt(t, data[MetricProgressEvents]); got != 4 {
		t.Errorf("events = %d", got)
	}
	if got := sumInt(t, data[MetricDiscardedLines]); got != 1 {
		t.Errorf("discarded = %d", got)
	}
	if got := sumInt(t, data[MetricLookupTotal]); got != 1 {
		t.Errorf("lookups = %d", got)
	}
	if _, ok := data[MetricGenerationDuration].(metricdata.Histogram[float64]); !ok {
		t.Errorf("expected duration histogram, got %T", data[MetricGenerationDuration])
	}
}

func TestServiceHealth_AddComponent(t *testing.T) {
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
	}{
		{"all up", []HealthStatus{HealthStatusUp}, HealthStatusUp},
		{"degraded", []HealthStatus{HealthStatusUp, HealthStatusDegraded}, HealthStatusDegraded},
		{"down wins", []HealthStatus{HealthStatusDown, HealthStatusDegraded}, HealthStatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := NewServiceHealth("nanodraw", "dev")
			for i, s := range tt.statuses {
				sh.AddComponent(Health{Name: string(rune('a' + i)), Status: s})
			}
			if sh.Status != tt.want {
				t.Errorf("status = %s, want %s", sh.Status, tt.want)
			}
			if len(sh.Components) != len(tt.statuses) {
				t.Errorf("expected %d components", len(tt.statuses))
			}
		})
	}
}
