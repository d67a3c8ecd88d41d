// Package resilience provides retry with exponential backoff and jitter.
//
//	out, err := resilience.Retry(ctx, cfg, func() (*Outcome, error) {
//	    return client.FetchResult(ctx, id)
//	})
//
// Retry stops early when ctx is done or when cfg.RetryIf rejects an error.
package resilience
