package fetcher

import (
	"fmt"
	"strings"
)

// InvalidArgumentError is returned for a list entry that cannot be fetched
// at all, such as one with no file name after its last '/'.
type InvalidArgumentError struct {
	URL    string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.URL, e.Reason)
}

// TransferError is returned when fetching a URL fails: a network error, a
// non-2xx status, or a failed write to the store.
type TransferError struct {
	URL string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// FailedURL records a URL that could not be fetched.
type FailedURL struct {
	Index int    // Position in the URL list
	URL   string // The list entry
	Err   error  // *InvalidArgumentError or *TransferError
}

// BatchError is returned by FetchAll when failures are isolated and at least
// one URL failed. Every other URL was still attempted.
//
// Use errors.As to extract this error and inspect Failures for details.
type BatchError struct {
	Total    int
	Failures []FailedURL
}

func (e *BatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d urls failed", len(e.Failures), e.Total)
	if len(e.Failures) > 0 {
		fmt.Fprintf(&b, ", first: %v", e.Failures[0].Err)
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}
