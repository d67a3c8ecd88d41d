// Package httpclient provides the HTTP transport used to reach the draw
// service: bearer authentication, typed error classification, retry for
// plain JSON calls and raw streaming responses for long-lived calls.
//
// # Basic Usage
//
//	a, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://grsaiapi.com",
//	    Timeout: 60 * time.Second,
//	    Auth:    httpclient.BearerAuth(apiKey),
//	})
//
//	stream, err := a.DoStream(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/v1/draw/nano-banana",
//	    Body:   payload,
//	})
//	defer stream.Close()
//
// Errors are *httpclient.Error values; use IsTimeout, IsConnection,
// IsAuth and friends to branch on them.
package httpclient
