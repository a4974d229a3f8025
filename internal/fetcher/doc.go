// Package fetcher downloads a list of URLs into a store in parallel.
//
// Each URL is stored under its last path segment ([TargetName]). A target
// that already exists is skipped without a request, which makes repeated
// runs over the same list cheap: the store doubles as the cache.
//
// # Usage
//
//	st, err := store.Open(ctx, "data", store.Options{Atomic: true})
//	...
//	summary, err := fetcher.New(st, fetcher.Options{
//	    Workers:  16,
//	    Progress: reporter,
//	}).FetchAll(ctx, urls)
//
// # Worker Pool
//
// FetchAll runs at most Options.Workers fetches at once and returns when all
// of them are done. The only shared state is the progress reporter's
// counters, which are atomic, and the failure list.
//
// # Failures
//
// By default a failing URL does not stop the others; the batch returns a
// [*BatchError] listing every [*InvalidArgumentError] and [*TransferError].
// With Options.FailFast the first failure cancels the batch and is returned
// directly. Failed requests are not retried.
package fetcher
