package draw

import "strings"

// Request defaults.
const (
	DefaultModel       = "nano-banana-pro"
	DefaultAspectRatio = "auto"
	DefaultImageSize   = "1K"
)

// GenerationRequest describes one image generation. JSON names follow the
// provider's wire format so the relay server can accept the same body.
type GenerationRequest struct {
	Prompt           string   `json:"prompt" validate:"required,notblank"`
	Model            string   `json:"model,omitempty"`
	AspectRatio      string   `json:"aspectRatio,omitempty"`
	ImageSize        string   `json:"imageSize,omitempty"`
	ReferenceURLs    []string `json:"urls,omitempty"`
	WebhookURL       string   `json:"webHook,omitempty"`
	SuppressProgress bool     `json:"shutProgress,omitempty"`
}

// drawPayload is the body sent to the draw endpoint, fields in wire order.
type drawPayload struct {
	Model        string   `json:"model"`
	Prompt       string   `json:"prompt"`
	AspectRatio  string   `json:"aspectRatio"`
	ImageSize    string   `json:"imageSize"`
	URLs         []string `json:"urls"`
	WebHook      string   `json:"webHook"`
	ShutProgress bool     `json:"shutProgress"`
}

// withDefaults returns a copy of r with every optional field filled in.
// defaultModel replaces DefaultModel when non-empty.
func (r GenerationRequest) withDefaults(defaultModel string) GenerationRequest {
	out := r
	out.Prompt = strings.TrimSpace(r.Prompt)
	if out.Model == "" {
		out.Model = defaultModel
	}
	if out.Model == "" {
		out.Model = DefaultModel
	}
	if out.AspectRatio == "" {
		out.AspectRatio = DefaultAspectRatio
	}
	if out.ImageSize == "" {
		out.ImageSize = DefaultImageSize
	}
	out.ReferenceURLs = append([]string{}, r.ReferenceURLs...)
	return out
}

func (r GenerationRequest) payload() drawPayload {
	urls := r.ReferenceURLs
	if urls == nil {
		urls = []string{}
	}
	return drawPayload{
		Model:        r.Model,
		Prompt:       r.Prompt,
		AspectRatio:  r.AspectRatio,
		ImageSize:    r.ImageSize,
		URLs:         urls,
		WebHook:      r.WebhookURL,
		ShutProgress: r.SuppressProgress,
	}
}
