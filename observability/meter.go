package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/nanodraw/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names.
const (
	MetricGenerationTotal    = "draw.generation.total"
	MetricGenerationDuration = "draw.generation.duration"
	MetricGenerationActive   = "draw.generation.active"
	MetricProgressEvents     = "draw.stream.events"
	MetricDiscardedLines     = "draw.stream.discarded_lines"
	MetricLookupTotal        = "draw.lookup.total"
)

// DrawMetrics holds the instruments recorded by the draw client.
type DrawMetrics struct {
	generationTotal    metric.Int64Counter
	generationDuration metric.Float64Histogram
	generationActive   metric.Int64UpDownCounter
	progressEvents     metric.Int64Counter
	discardedLines     metric.Int64Counter
	lookupTotal        metric.Int64Counter
}

// NewDrawMetrics creates the draw instruments on the given meter.
func NewDrawMetrics(meter metric.Meter) (*DrawMetrics, error) {
	generationTotal, err := meter.Int64Counter(MetricGenerationTotal,
		metric.WithDescription("Generation calls by model and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricGenerationTotal, err)
	}

	generationDuration, err := meter.Float64Histogram(MetricGenerationDuration,
		metric.WithDescription("Time from request to settled outcome"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricGenerationDuration, err)
	}

	generationActive, err := meter.Int64UpDownCounter(MetricGenerationActive,
		metric.WithDescription("Generation streams currently open"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricGenerationActive, err)
	}

	progressEvents, err := meter.Int64Counter(MetricProgressEvents,
		metric.WithDescription("Decoded stream events"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricProgressEvents, err)
	}

	discardedLines, err := meter.Int64Counter(MetricDiscardedLines,
		metric.WithDescription("Stream lines that could not be decoded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDiscardedLines, err)
	}

	lookupTotal, err := meter.Int64Counter(MetricLookupTotal,
		metric.WithDescription("Result lookups by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricLookupTotal, err)
	}

	return &DrawMetrics{
		generationTotal:    generationTotal,
		generationDuration: generationDuration,
		generationActive:   generationActive,
		progressEvents:     progressEvents,
		discardedLines:     discardedLines,
		lookupTotal:        lookupTotal,
	}, nil
}

// RecordGenerationStart increments the open stream count.
func (m *DrawMetrics) RecordGenerationStart(ctx context.Context) {
	m.generationActive.Add(ctx, 1)
}

// RecordGenerationEnd decrements open streams and records the settled call.
func (m *DrawMetrics) RecordGenerationEnd(ctx context.Context, model, outcome string, duration time.Duration) {
	m.generationActive.Add(ctx, -1)
	m.generationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	))
	m.generationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("model", model),
	))
}

// RecordStreamLines records decoded events and discarded lines for one call.
func (m *DrawMetrics) RecordStreamLines(ctx context.Context, events, discarded int) {
	if events > 0 {
		m.progressEvents.Add(ctx, int64(events))
	}
	if discarded > 0 {
		m.discardedLines.Add(ctx, int64(discarded))
	}
}

// RecordLookup records one result lookup.
func (m *DrawMetrics) RecordLookup(ctx context.Context, status string) {
	m.lookupTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
