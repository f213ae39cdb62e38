// Package http provides the HTTP client used to probe the download endpoint.
//
// This package handles:
//   - Connection pooling sized for batch-level parallelism
//   - A fixed per-request timeout
//   - The browser-like User-Agent the endpoint requires to respond normally
//   - Content-Disposition filename extraction
//
// The client performs exactly one attempt per request. Failed probes are
// retried by resampling a fresh identifier at the engine level, never by
// re-issuing the same request here.
//
// # Usage
//
//	client := http.NewClient(Options{
//	    Timeout: 10 * time.Second,
//	})
//
//	resp, err := client.Get(ctx, url)
//	defer resp.Body.Close()
package http
