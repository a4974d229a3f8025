// Package http provides the HTTP client used by the batch fetcher.
//
// This package handles:
//   - Connection pooling sized for many parallel downloads
//   - Streaming GET requests (the body is never buffered in memory)
//   - Mapping of non-2xx statuses to sentinel errors
//
// Requests are not retried. A per-request timeout is available but off by
// default.
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	resp, err := client.Get(ctx, url)
//	if err != nil {
//	    return err
//	}
//	defer resp.Body.Close()
//	io.Copy(dst, resp.Body)
package http
