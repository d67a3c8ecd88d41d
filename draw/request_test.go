package draw

import (
	"encoding/json"
	"testing"
)

func TestGenerationRequest_WithDefaults(t *testing.T) {
	tests := []struct {
		name         string
		req          GenerationRequest
		defaultModel string
		want         string
	}{
		{
			name: "all defaults",
			req:  GenerationRequest{Prompt: "  a red fox  "},
			want: `{"model":"nano-banana-pro","prompt":"a red fox","aspectRatio":"auto","imageSize":"1K","urls":[],"webHook":"","shutProgress":false}`,
		},
		{
			name:         "configured model",
			req:          GenerationRequest{Prompt: "fox"},
			defaultModel: "nano-banana",
			want:         `{"model":"nano-banana","prompt":"fox","aspectRatio":"auto","imageSize":"1K","urls":[],"webHook":"","shutProgress":false}`,
		},
		{
			name: "explicit values",
			req: GenerationRequest{
				Prompt:           "fox",
				Model:            "nano-banana-fast",
				AspectRatio:      "16:9",
				ImageSize:        "4K",
				ReferenceURLs:    []string{"https://example.com/a.png"},
				WebhookURL:       "https://example.com/hook",
				SuppressProgress: true,
			},
			defaultModel: "ignored",
			want:         `{"model":"nano-banana-fast","prompt":"fox","aspectRatio":"16:9","imageSize":"4K","urls":["https://example.com/a.png"],"webHook":"https://example.com/hook","shutProgress":true}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.req.withDefaults(tt.defaultModel).payload())
			if err != nil {
				t.Fatal(err)
			}
			if string(body) != tt.want {
				t.Errorf("unexpected body\n got: %s\nwant: %s", body, tt.want)
			}
		})
	}
}

func TestGenerationRequest_WithDefaultsCopies(t *testing.T) {
	urls := []string{"https://example.com/a.png"}
	req := GenerationRequest{Prompt: " fox ", ReferenceURLs: urls}

	out := req.withDefaults("")
	out.ReferenceURLs[0] = "changed"

	if req.Prompt != " fox " || req.Model != "" || req.AspectRatio != "" {
		t.Errorf("caller request mutated: %+v", req)
	}
	if urls[0] != "https://example.com/a.png" {
		t.Error("caller url slice shared with the copy")
	}
}
