// Package observability wires OpenTelemetry tracing and metrics for nanodraw.
//
// Nothing is exported unless Init is called with an enabled Config; until
// then spans and instruments go to the global no-op providers.
//
//	shutdown, err := observability.Init(ctx, cfg.Observability, "nanodraw", version.Version, "production")
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanGenerate)
//	defer span.End()
//
//	m, err := observability.NewDrawMetrics(observability.Meter("nanodraw/draw"))
//	m.RecordGenerationEnd(ctx, "nano-banana-pro", "succeeded", elapsed)
package observability
