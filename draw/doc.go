// Package draw is the client for the nano-banana image generation service.
//
// A generation call streams progress back as an HTTP body whose framing varies:
// Server-Sent Events ("data: {...}"), tab or space separated "message" records,
// or bare JSON lines. Resolver re-segments that body into lines regardless of
// chunk boundaries, decodes each line into an Event, reports progress to an
// optional observer and settles exactly once, on success, on a reported
// failure, on a read error or when the stream ends without a terminal status.
//
// Client wires the resolver to the HTTP adapter and adds request defaults,
// validation, tracing and metrics:
//
//	c, err := draw.New(draw.Config{APIKey: key})
//	out, err := c.Generate(ctx, draw.GenerationRequest{Prompt: "a red fox"},
//		func(p float64, ev *draw.Event) { fmt.Printf("%.0f%%\n", p) })
//
// FetchResult and PollResult look a task up by id when a stream ended before
// its outcome was known.
package draw
