package draw

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Task statuses reported by the draw service.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Event is one decoded message from a generation stream or a result lookup.
type Event struct {
	// Progress is the reported completion percentage, 0 when absent.
	Progress float64
	// Status is the task status as sent by the provider.
	Status string
	// ID is the provider task id.
	ID string
	// Results is the raw results payload, nil when absent or null.
	Results json.RawMessage
	// Error and FailureReason carry the provider's failure text.
	Error         string
	FailureReason string
	// Raw is the decoded JSON object exactly as received.
	Raw json.RawMessage
}

// Succeeded reports whether the event completes the task with results.
func (e *Event) Succeeded() bool {
	return e.Status == StatusSucceeded && len(e.Results) > 0
}

// Failed reports whether the event signals a failed task. It is only
// consulted after Succeeded.
func (e *Event) Failed() bool {
	return e.Status == StatusFailed || e.Error != "" || e.FailureReason != ""
}

// FailureMessage returns the provider's error text, else its failure reason,
// else a generic message.
func (e *Event) FailureMessage() string {
	switch {
	case e.Error != "":
		return e.Error
	case e.FailureReason != "":
		return e.FailureReason
	default:
		return msgGenerationFailed
	}
}

type wireEvent struct {
	ID            json.RawMessage `json:"id"`
	Status        json.RawMessage `json:"status"`
	Progress      json.RawMessage `json:"progress"`
	Results       json.RawMessage `json:"results"`
	Error         json.RawMessage `json:"error"`
	FailureReason json.RawMessage `json:"failure_reason"`
}

var errNotObject = errors.New("payload is not a JSON object")

// decodeEvent decodes a JSON object into an Event. Fields the provider sends
// with an unexpected type are kept as their JSON text rather than rejected.
func decodeEvent(data []byte) (*Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errNotObject
	}
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	ev := &Event{
		Progress:      number(w.Progress),
		Status:        text(w.Status),
		ID:            text(w.ID),
		Error:         text(w.Error),
		FailureReason: text(w.FailureReason),
		Raw:           json.RawMessage(append([]byte(nil), data...)),
	}
	if present(w.Results) {
		ev.Results = w.Results
	}
	return ev, nil
}

// falsy lists JSON values that count as an absent field.
var falsy = map[string]bool{"": true, "null": true, "false": true, "0": true, `""`: true}

func present(raw json.RawMessage) bool {
	return !falsy[string(bytes.TrimSpace(raw))]
}

func text(raw json.RawMessage) string {
	if !present(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func number(raw json.RawMessage) float64 {
	if !present(raw) {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}
