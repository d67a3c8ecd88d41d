package draw

import (
	"bytes"
	"strings"
	"sync/atomic"

	"github.com/kbukum/nanodraw/logger"
)

// ProgressFunc observes every decoded event before it is checked for
// settlement. It runs inline in the read loop.
type ProgressFunc func(progress float64, ev *Event)

const (
	statePending int32 = iota
	stateSettled
)

// maxLoggedLine bounds how much of a discarded line reaches the log.
const maxLoggedLine = 256

// Resolver turns stream chunks into exactly one outcome. It is fed by a single
// goroutine; once settled every further call is a no-op.
type Resolver struct {
	observer ProgressFunc
	log      *logger.Logger

	buf   []byte
	state atomic.Int32

	outcome *Outcome
	err     error

	events    int
	discarded int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for discarded lines.
func WithResolverLogger(l *logger.Logger) ResolverOption {
	return func(r *Resolver) { r.log = l }
}

// NewResolver creates a pending resolver. observer may be nil.
func NewResolver(observer ProgressFunc, opts ...ResolverOption) *Resolver {
	r := &Resolver{observer: observer, log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Settled reports whether the outcome is fixed.
func (r *Resolver) Settled() bool {
	return r.state.Load() == stateSettled
}

// Result returns the settled outcome or error. Before settlement both are nil.
func (r *Resolver) Result() (*Outcome, error) {
	return r.outcome, r.err
}

// Stats returns how many events were decoded and how many lines discarded.
func (r *Resolver) Stats() (events, discarded int) {
	return r.events, r.discarded
}

// Feed appends a chunk and processes every complete line in it. Lines are
// split on the raw '\n' byte, which never occurs inside a multi-byte UTF-8
// sequence, so a character split across chunks is whole again before its
// line is decoded.
func (r *Resolver) Feed(chunk []byte) {
	if r.Settled() {
		return
	}
	r.buf = append(r.buf, chunk...)

	start := 0
	for {
		idx := bytes.IndexByte(r.buf[start:], '\n')
		if idx < 0 {
			break
		}
		line := r.buf[start : start+idx]
		start += idx + 1
		r.processLine(string(bytes.TrimSuffix(line, []byte("\r"))))
		if r.Settled() {
			r.buf = nil
			return
		}
	}
	n := copy(r.buf, r.buf[start:])
	r.buf = r.buf[:n]
}

// Finish reconciles the trailing buffer at end of stream. Trailing records are
// scanned newest first so the latest status wins; if none settles, the call
// fails as ended early.
func (r *Resolver) Finish() {
	if r.Settled() {
		return
	}
	trailing := string(r.buf)
	r.buf = nil

	lines := splitRecords(trailing)
	for i := len(lines) - 1; i >= 0; i-- {
		r.processLine(lines[i])
		if r.Settled() {
			return
		}
	}
	r.settle(nil, prematureEnd())
}

// Fail settles the call with a classified read error. It changes nothing once
// the call has settled.
func (r *Resolver) Fail(err error) {
	if err == nil || r.Settled() {
		return
	}
	r.settle(nil, classifyReadError(err))
}

func (r *Resolver) processLine(line string) {
	if r.Settled() || strings.TrimSpace(line) == "" {
		return
	}

	d := decodeLine(line)
	if d.err != nil {
		r.discarded++
		r.log.Warn("discarding undecodable stream line", logger.Fields(
			"framing", d.framing,
			"line", truncate(line, maxLoggedLine),
			logger.FieldError, d.err.Error(),
		))
		return
	}
	if d.event == nil {
		r.log.Debug("ignoring unframed stream line", logger.Fields("line", truncate(line, maxLoggedLine)))
		return
	}

	ev := d.event
	r.events++
	if r.observer != nil {
		r.observer(ev.Progress, ev)
	}

	switch {
	case ev.Succeeded():
		r.settle(outcomeFrom(ev), nil)
	case ev.Failed():
		r.settle(nil, generationFailed(ev))
	}
}

func (r *Resolver) settle(out *Outcome, err error) {
	if !r.state.CompareAndSwap(statePending, stateSettled) {
		return
	}
	r.outcome = out
	r.err = err
}

// splitRecords splits text on any line break and drops blank records.
func splitRecords(s string) []string {
	fields := strings.FieldsFunc(s, func(c rune) bool { return c == '\n' || c == '\r' })
	out := fields[:0]
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
