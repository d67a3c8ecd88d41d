package draw

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/nanodraw/errors"
	"github.com/kbukum/nanodraw/httpclient"
	"github.com/kbukum/nanodraw/logger"
	"github.com/kbukum/nanodraw/observability"
	"github.com/kbukum/nanodraw/resilience"
	"github.com/kbukum/nanodraw/validation"
	"github.com/kbukum/nanodraw/version"
)

const componentName = "draw"

// Client talks to the draw service. It is safe for concurrent use; each call
// owns its connection and resolver.
type Client struct {
	cfg     Config
	http    *httpclient.Adapter
	log     *logger.Logger
	metrics *observability.DrawMetrics
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	log         *logger.Logger
	metrics     *observability.DrawMetrics
	httpOptions []httpclient.Option
}

// WithLogger sets the client logger. Defaults to the global "draw" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithMetrics sets the metric instruments. Defaults to instruments on the global meter.
func WithMetrics(m *observability.DrawMetrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithHTTPOptions passes options to the underlying HTTP adapter.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(o *clientOptions) { o.httpOptions = append(o.httpOptions, opts...) }
}

// New creates a draw client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Get(componentName)
	}
	if o.metrics == nil {
		m, err := observability.NewDrawMetrics(observability.Meter("github.com/kbukum/nanodraw/draw"))
		if err != nil {
			return nil, fmt.Errorf("draw: create metrics: %w", err)
		}
		o.metrics = m
	}

	adapter, err := httpclient.New(httpclient.Config{
		Name:    componentName,
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
		Headers: map[string]string{"User-Agent": version.UserAgent()},
		Retry:   httpclient.DefaultRetryConfig(),
	}, o.httpOptions...)
	if err != nil {
		return nil, fmt.Errorf("draw: create http adapter: %w", err)
	}

	return &Client{
		cfg:     cfg,
		http:    adapter,
		log:     o.log,
		metrics: o.metrics,
	}, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Generate issues one generation request and blocks until its stream settles.
// observer receives every decoded event in order; it is not called when the
// request suppresses progress. The request is validated before any network
// activity and is never modified.
func (c *Client) Generate(ctx context.Context, req GenerationRequest, observer ProgressFunc) (*Outcome, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	req = req.withDefaults(c.cfg.Model)
	if req.SuppressProgress {
		observer = nil
	}

	callID := uuid.NewString()
	ctx = context.WithValue(ctx, logger.ContextKeyCallID, callID)
	log := c.log.WithContext(ctx)

	ctx, span := observability.StartSpan(ctx, observability.SpanGenerate)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrCallID, callID)
	observability.SetSpanAttribute(ctx, observability.AttrModel, req.Model)

	log.Debug("generation started", logger.Fields(
		logger.FieldModel, req.Model,
		"aspect_ratio", req.AspectRatio,
		"image_size", req.ImageSize,
		"reference_urls", len(req.ReferenceURLs),
	))

	start := time.Now()
	c.metrics.RecordGenerationStart(ctx)
	out, events, discarded, err := c.stream(ctx, req, observer, log)
	elapsed := time.Since(start)

	c.metrics.RecordStreamLines(ctx, events, discarded)
	c.metrics.RecordGenerationEnd(ctx, req.Model, outcomeLabel(err), elapsed)
	observability.SetSpanAttribute(ctx, observability.AttrEvents, events)
	observability.SetSpanAttribute(ctx, observability.AttrOutcome, outcomeLabel(err))

	if err != nil {
		observability.SetSpanError(ctx, err)
		fields := logger.Fields(logger.FieldModel, req.Model, "events", events, logger.FieldError, err.Error())
		if appErr, ok := apperrors.AsAppError(err); ok {
			fields["code"] = string(appErr.Code)
		}
		log.Warn("generation did not complete", logger.MergeWithDuration(fields, elapsed))
		return nil, err
	}

	observability.SetSpanAttribute(ctx, observability.AttrTaskID, out.ID)
	observability.SetSpanAttribute(ctx, observability.AttrProgress, out.Progress)
	log.Info("generation succeeded", logger.MergeWithDuration(logger.Fields(
		logger.FieldModel, req.Model,
		logger.FieldTaskID, out.ID,
		"events", events,
		"discarded", discarded,
	), elapsed))
	return out, nil
}

func (c *Client) stream(ctx context.Context, req GenerationRequest, observer ProgressFunc, log *logger.Logger) (*Outcome, int, int, error) {
	resp, err := c.http.DoStream(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   c.cfg.DrawPath,
		Body:   req.payload(),
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("draw: open stream: %w", err)
	}
	defer resp.Close()

	log.Debug("stream opened", logger.Fields(
		"status_code", resp.StatusCode,
		"content_type", resp.ContentType(),
	))

	r := NewResolver(observer, WithResolverLogger(log))
	out, err := Consume(NewReaderSource(resp.Body, 0), r)
	events, discarded := r.Stats()
	return out, events, discarded, err
}

// GenerateAsync runs Generate in a goroutine. The returned channel yields
// exactly one Result and is then closed.
func (c *Client) GenerateAsync(ctx context.Context, req GenerationRequest, observer ProgressFunc) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		out, err := c.Generate(ctx, req, observer)
		ch <- Result{Outcome: out, Err: err}
	}()
	return ch
}

type resultQuery struct {
	ID string `json:"id"`
}

type resultEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// FetchResult looks up a task once. A finished task yields its outcome, a
// failed one a GENERATION_FAILED error, and a task still running an outcome
// carrying its current status and progress.
func (c *Client) FetchResult(ctx context.Context, id string) (*Outcome, error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanFetchResult)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrTaskID, id)

	out, err := c.fetchResult(ctx, id)
	if err != nil {
		observability.SetSpanError(ctx, err)
		c.metrics.RecordLookup(ctx, outcomeLabel(err))
		return nil, err
	}
	c.metrics.RecordLookup(ctx, out.Status)
	return out, nil
}

func (c *Client) fetchResult(ctx context.Context, id string) (*Outcome, error) {
	resp, err := httpclient.Post[resultEnvelope](c.http, ctx, c.cfg.ResultPath, resultQuery{ID: id})
	if err != nil {
		return nil, fmt.Errorf("draw: fetch result: %w", err)
	}

	env := resp.Data
	if env.Code != 0 {
		return nil, lookupFailed(id, env.Msg, env.Code)
	}
	ev, err := decodeEvent(env.Data)
	if err != nil {
		return nil, lookupFailed(id, "result lookup returned no task data", env.Code).WithCause(err)
	}
	if ev.ID == "" {
		ev.ID = id
	}

	switch {
	case ev.Succeeded():
		return outcomeFrom(ev), nil
	case ev.Failed():
		return nil, generationFailed(ev)
	default:
		return outcomeFrom(ev), nil
	}
}

var errStillRunning = stderrors.New("task still running")

// PollResult repeats FetchResult with backoff until the task finishes, fails,
// or the configured attempts run out. Running out yields a TIMEOUT error whose
// details carry the last known status and progress.
func (c *Client) PollResult(ctx context.Context, id string) (*Outcome, error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanPollResult)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrTaskID, id)

	log := c.log.WithFields(logger.Fields(logger.FieldTaskID, id))
	var last *Outcome

	retryCfg := resilience.RetryConfig{
		MaxAttempts:    c.cfg.Poll.MaxAttempts,
		InitialBackoff: c.cfg.Poll.Interval,
		MaxBackoff:     c.cfg.Poll.MaxInterval,
		BackoffFactor:  1.5,
		Jitter:         0.1,
		RetryIf: func(err error) bool {
			return stderrors.Is(err, errStillRunning) || httpclient.IsRetryable(err)
		},
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			fields := logger.Fields("attempt", attempt, "backoff", backoff.String())
			if last != nil {
				fields[logger.FieldStatus] = last.Status
				fields[logger.FieldProgress] = last.Progress
			}
			if !stderrors.Is(err, errStillRunning) {
				fields[logger.FieldError] = err.Error()
			}
			log.Debug("result not ready", fields)
		},
	}

	out, err := resilience.Retry(ctx, retryCfg, func() (*Outcome, error) {
		out, err := c.FetchResult(ctx, id)
		if err != nil {
			return nil, err
		}
		if !out.Done() {
			last = out
			return nil, errStillRunning
		}
		return out, nil
	})
	if stderrors.Is(err, errStillRunning) {
		timeoutErr := apperrors.Timeout("result poll").
			WithDetail("id", id).
			WithDetail("attempts", retryCfg.MaxAttempts)
		timeoutErr.Message = msgPollExhausted
		if last != nil {
			timeoutErr = timeoutErr.
				WithDetail("status", last.Status).
				WithDetail("progress", last.Progress)
		}
		err = timeoutErr
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	return out, nil
}

// CheckHealth reports the client as degraded when no API key is configured.
func (c *Client) CheckHealth(_ context.Context) observability.Health {
	h := observability.Health{
		Name:    componentName,
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"base_url": c.cfg.BaseURL, "model": c.cfg.Model},
	}
	if c.cfg.APIKey == "" {
		h.Status = observability.HealthStatusDegraded
		h.Message = "api key not configured"
	}
	return h
}

// Close releases idle connections.
func (c *Client) Close(ctx context.Context) error {
	return c.http.Close(ctx)
}

// outcomeLabel names a settled call for metrics and spans.
func outcomeLabel(err error) string {
	if err == nil {
		return StatusSucceeded
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return strings.ToLower(string(appErr.Code))
	}
	if httpErr, ok := httpclient.AsError(err); ok {
		return "transport_" + httpErr.Code.String()
	}
	return "error"
}
