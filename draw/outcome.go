package draw

import (
	"encoding/json"
	"fmt"
)

// Outcome is the settled value of one generation call or result lookup.
type Outcome struct {
	ID       string          `json:"id"`
	Results  json.RawMessage `json:"results,omitempty"`
	Progress float64         `json:"progress"`
	Status   string          `json:"status"`
}

// Done reports whether the task finished with results.
func (o *Outcome) Done() bool {
	return o.Status == StatusSucceeded && len(o.Results) > 0
}

// Image is one generated image as listed in the results payload.
type Image struct {
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
}

// Images decodes the provider's results list.
func (o *Outcome) Images() ([]Image, error) {
	if len(o.Results) == 0 {
		return nil, nil
	}
	var images []Image
	if err := json.Unmarshal(o.Results, &images); err != nil {
		return nil, fmt.Errorf("draw: decode results: %w", err)
	}
	return images, nil
}

func outcomeFrom(ev *Event) *Outcome {
	return &Outcome{
		ID:       ev.ID,
		Results:  ev.Results,
		Progress: ev.Progress,
		Status:   ev.Status,
	}
}

// Result carries the single value delivered by GenerateAsync.
type Result struct {
	Outcome *Outcome
	Err     error
}
