package draw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/nanodraw/errors"
	"github.com/kbukum/nanodraw/httpclient"
	"github.com/kbukum/nanodraw/logger"
	"github.com/kbukum/nanodraw/observability"
)

func newTestClient(t *testing.T, url string, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL: url,
		APIKey:  "sk-test",
		Timeout: 2 * time.Second,
		Poll:    PollConfig{MaxAttempts: 4, Interval: time.Millisecond, MaxInterval: 2 * time.Millisecond},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := New(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

// sseHandler writes each event as an SSE record, flushing between them.
func sseHandler(t *testing.T, captured *drawPayload, events ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultDrawPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, ev := range events {
			fmt.Fprintf(w, "data: %s\n\n", ev)
			flusher.Flush()
		}
	}
}

func TestClient_Generate(t *testing.T) {
	var body drawPayload
	srv := httptest.NewServer(sseHandler(t, &body,
		`{"id":"task-1","status":"running","progress":25}`,
		`{"id":"task-1","status":"running","progress":75}`,
		`{"id":"task-1","status":"succeeded","progress":100,"results":[{"url":"https://cdn.example/1.png"}]}`,
	))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var progress []float64
	out, err := c.Generate(context.Background(), GenerationRequest{Prompt: " a red fox "}, func(p float64, _ *Event) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != "task-1" || !out.Done() {
		t.Errorf("unexpected outcome %+v", out)
	}
	if fmt.Sprint(progress) != "[25 75 100]" {
		t.Errorf("unexpected progress %v", progress)
	}
	if body.Prompt != "a red fox" || body.Model != DefaultModel || body.URLs == nil {
		t.Errorf("unexpected request body %+v", body)
	}
}

func TestClient_Generate_SuppressProgress(t *testing.T) {
	var body drawPayload
	srv := httptest.NewServer(sseHandler(t, &body,
		`{"id":"t","status":"running","progress":50}`,
		`{"id":"t","status":"succeeded","results":[{"url":"u"}]}`,
	))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	calls := 0
	_, err := c.Generate(context.Background(), GenerationRequest{Prompt: "fox", SuppressProgress: true}, func(float64, *Event) {
		calls++
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("observer called %d times with progress suppressed", calls)
	}
	if !body.ShutProgress {
		t.Error("shutProgress not sent")
	}
}

func TestClient_Generate_InvalidPromptMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	for _, prompt := range []string{"", "   ", "\t\n"} {
		t.Run(fmt.Sprintf("%q", prompt), func(t *testing.T) {
			_, err := c.Generate(context.Background(), GenerationRequest{Prompt: prompt}, nil)
			if code := codeOf(t, err); code != apperrors.ErrCodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %s", code)
			}
		})
	}
	if hits.Load() != 0 {
		t.Errorf("expected no requests, got %d", hits.Load())
	}
}

func TestClient_Generate_HTTPError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"msg":"upstream exploded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Generate(context.Background(), GenerationRequest{Prompt: "fox"}, nil)
	if !httpclient.IsServerError(err) {
		t.Fatalf("expected server error, got %v", err)
	}
	httpErr, _ := httpclient.AsError(err)
	if httpErr.StatusCode != http.StatusInternalServerError || !strings.Contains(string(httpErr.Body), "upstream exploded") {
		t.Errorf("unexpected error %+v", httpErr)
	}
	if hits.Load() != 1 {
		t.Errorf("streaming requests must not be retried, got %d attempts", hits.Load())
	}
}

func TestClient_Generate_Failed(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, nil,
		`{"id":"t","status":"running","progress":30}`,
		`{"id":"t","status":"failed","failure_reason":"output_moderation"}`,
	))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Generate(context.Background(), GenerationRequest{Prompt: "fox"}, nil)
	if !IsGenerationFailed(err) {
		t.Fatalf("expected generation failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "output_moderation") {
		t.Errorf("unexpected message %v", err)
	}
}

func TestClient_Generate_PrematureEnd(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, nil, `{"id":"t","status":"running","progress":90}`))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Generate(context.Background(), GenerationRequest{Prompt: "fox"}, nil)
	if !MayStillComplete(err) {
		t.Fatalf("expected a retryable incomplete stream, got %v", err)
	}
}

func TestClient_Generate_ChunkedInterruption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		defer conn.Close()
		chunk := `data: {"status":"running","progress":10}` + "\n"
		fmt.Fprintf(buf, "HTTP/1.1 200 OK\r\nContent-Type: text/event-stream\r\nTransfer-Encoding: chunked\r\n\r\n")
		fmt.Fprintf(buf, "%x\r\n%s\r\n", len(chunk), chunk)
		_ = buf.Flush()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Generate(context.Background(), GenerationRequest{Prompt: "fox"}, nil)
	if code := codeOf(t, err); code != apperrors.ErrCodeStreamInterrupted {
		t.Errorf("expected STREAM_INTERRUPTED, got %s (%v)", code, err)
	}
	if !MayStillComplete(err) {
		t.Error("an interrupted stream may still complete")
	}
}

func TestClient_Generate_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	_, err := c.Generate(context.Background(), GenerationRequest{Prompt: "fox"}, nil)
	if !httpclient.IsConnection(err) {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestClient_Generate_CancelMidStream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"status":"running","progress":5}`+"\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	out, err := c.Generate(ctx, GenerationRequest{Prompt: "fox"}, func(float64, *Event) {
		calls++
		cancel()
	})
	if out != nil || err == nil {
		t.Fatalf("expected failure after cancel, got %+v, %v", out, err)
	}
	if calls != 1 {
		t.Errorf("expected one observer call, got %d", calls)
	}
}

func TestClient_GenerateAsync(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, nil, `{"id":"a","status":"succeeded","results":[{"url":"u"}]}`))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ch := c.GenerateAsync(context.Background(), GenerationRequest{Prompt: "fox"}, nil)

	res, ok := <-ch
	if !ok {
		t.Fatal("channel closed without a result")
	}
	if res.Err != nil || res.Outcome.ID != "a" {
		t.Errorf("unexpected result %+v", res)
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to close after one result")
	}
}

func TestClient_GenerateAsync_ValidationError(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	res := <-c.GenerateAsync(context.Background(), GenerationRequest{}, nil)
	if res.Outcome != nil || codeOf(t, res.Err) != apperrors.ErrCodeInvalidInput {
		t.Errorf("unexpected result %+v", res)
	}
}

func resultServer(t *testing.T, bodies ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultResultPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if string(raw) != `{"id":"task-1"}` {
			t.Errorf("unexpected body %s", raw)
		}
		n := int(hits.Add(1)) - 1
		if n >= len(bodies) {
			n = len(bodies) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, bodies[n])
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestClient_FetchResult(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus string
		wantCode   apperrors.ErrorCode
	}{
		{
			name:       "succeeded",
			body:       `{"code":0,"msg":"success","data":{"id":"task-1","status":"succeeded","progress":100,"results":[{"url":"u"}]}}`,
			wantStatus: StatusSucceeded,
		},
		{
			name:       "running",
			body:       `{"code":0,"msg":"success","data":{"id":"task-1","status":"running","progress":"40"}}`,
			wantStatus: StatusRunning,
		},
		{
			name:     "failed",
			body:     `{"code":0,"msg":"success","data":{"id":"task-1","status":"failed","error":"nope"}}`,
			wantCode: apperrors.ErrCodeGenerationFailed,
		},
		{
			name:     "lookup rejected",
			body:     `{"code":-22,"msg":"task not found"}`,
			wantCode: apperrors.ErrCodeResultLookup,
		},
		{
			name:     "missing data",
			body:     `{"code":0,"msg":"success","data":null}`,
			wantCode: apperrors.ErrCodeResultLookup,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := resultServer(t, tt.body)
			c := newTestClient(t, srv.URL)

			out, err := c.FetchResult(context.Background(), "task-1")
			if tt.wantCode != "" {
				if code := codeOf(t, err); code != tt.wantCode {
					t.Errorf("expected %s, got %s", tt.wantCode, code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.ID != "task-1" || out.Status != tt.wantStatus {
				t.Errorf("unexpected outcome %+v", out)
			}
		})
	}
}

func TestClient_FetchResult_EmptyID(t *testing.T) {
	srv, hits := resultServer(t, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := c.FetchResult(context.Background(), " ")
	if code := codeOf(t, err); code != apperrors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", code)
	}
	if hits.Load() != 0 {
		t.Error("lookup issued for an empty id")
	}
}

func TestClient_PollResult(t *testing.T) {
	srv, hits := resultServer(t,
		`{"code":0,"data":{"id":"task-1","status":"running","progress":10}}`,
		`{"code":0,"data":{"id":"task-1","status":"running","progress":60}}`,
		`{"code":0,"data":{"id":"task-1","status":"succeeded","progress":100,"results":[{"url":"u"}]}}`,
	)
	c := newTestClient(t, srv.URL)

	out, err := c.PollResult(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Done() {
		t.Errorf("unexpected outcome %+v", out)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 lookups, got %d", hits.Load())
	}
}

func TestClient_PollResult_Exhausted(t *testing.T) {
	srv, hits := resultServer(t, `{"code":0,"data":{"id":"task-1","status":"running","progress":80}}`)
	c := newTestClient(t, srv.URL)

	_, err := c.PollResult(context.Background(), "task-1")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeTimeout {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
	if appErr.Details["status"] != StatusRunning || appErr.Details["progress"] != 80.0 {
		t.Errorf("unexpected details %v", appErr.Details)
	}
	if !MayStillComplete(err) {
		t.Error("an exhausted poll may still complete")
	}
	if hits.Load() != 4 {
		t.Errorf("expected 4 lookups, got %d", hits.Load())
	}
}

func TestClient_PollResult_StopsOnFailure(t *testing.T) {
	srv, hits := resultServer(t, `{"code":0,"data":{"id":"task-1","status":"failed","failure_reason":"x"}}`)
	c := newTestClient(t, srv.URL)

	_, err := c.PollResult(context.Background(), "task-1")
	if !IsGenerationFailed(err) {
		t.Fatalf("expected generation failure, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected a single lookup, got %d", hits.Load())
	}
}

func TestClient_CheckHealth(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	if h := c.CheckHealth(context.Background()); h.Status != observability.HealthStatusUp {
		t.Errorf("expected up, got %+v", h)
	}

	c = newTestClient(t, "http://127.0.0.1:1", func(cfg *Config) { cfg.APIKey = "" })
	if h := c.CheckHealth(context.Background()); h.Status != observability.HealthStatusDegraded {
		t.Errorf("expected degraded, got %+v", h)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://example.com" }, true},
		{"no host", func(c *Config) { c.BaseURL = "https://" }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"poll interval above max", func(c *Config) { c.Poll.Interval = time.Minute }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
