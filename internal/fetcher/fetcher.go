package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	fetchhttp "github.com/ligustah/skyfetch/internal/http"
	"github.com/ligustah/skyfetch/internal/progress"
	"github.com/ligustah/skyfetch/internal/store"
	"github.com/ligustah/skyfetch/internal/urllist"
)

// DefaultWorkers is the worker pool size used when Options.Workers is unset.
const DefaultWorkers = 16

// DefaultBufferSize is the copy buffer size used when Options.BufferSize is unset.
const DefaultBufferSize = 1024 * 1024

// Getter issues streaming GET requests. *fetchhttp.Client implements it.
type Getter interface {
	Get(ctx context.Context, url string) (*fetchhttp.Response, error)
}

// Options configures the fetcher.
type Options struct {
	// Workers is the number of parallel fetches.
	Workers int

	// BufferSize is the size of each worker's copy buffer. It bounds the
	// memory used per transfer regardless of file size.
	BufferSize int64

	// FailFast stops the batch at the first failure. When false, failures
	// are collected and every URL is still attempted.
	FailFast bool

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Client overrides the HTTP client built from HTTPOptions.
	Client Getter

	// HTTPOptions configures the HTTP client.
	HTTPOptions fetchhttp.Options
}

// Result describes the outcome of one successful FetchOne call.
type Result struct {
	URL     string
	Name    string
	Skipped bool  // target already present, nothing was transferred
	Bytes   int64 // bytes written for a fetched file
}

// Summary aggregates the outcome of a batch.
type Summary struct {
	Total    int
	Fetched  int
	Skipped  int
	Bytes    int64
	Failures []FailedURL
}

// Fetcher copies URLs into a store.
type Fetcher struct {
	store    store.Store
	client   Getter
	opts     Options
	reporter *progress.Reporter
	bufPool  sync.Pool
}

// New returns a fetcher writing into st.
func New(st store.Store, opts Options) *Fetcher {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	client := opts.Client
	if client == nil {
		client = fetchhttp.NewClient(opts.HTTPOptions)
	}

	reporter := opts.Progress
	if reporter == nil {
		reporter = progress.NewReporter(progress.Options{Quiet: true})
	}

	f := &Fetcher{
		store:    st,
		client:   client,
		opts:     opts,
		reporter: reporter,
	}
	f.bufPool.New = func() any {
		buf := make([]byte, f.opts.BufferSize)
		return &buf
	}
	return f
}

// Reporter returns the progress reporter the fetcher updates.
func (f *Fetcher) Reporter() *progress.Reporter {
	return f.reporter
}

// TargetName returns the file name a URL is stored under: everything after
// its last '/'. The text is used as is, so a query string stays part of
// the name.
func TargetName(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

// Target returns the target name for url, or an *InvalidArgumentError when
// the entry cannot name a file.
func Target(url string) (string, error) {
	if !utf8.ValidString(url) {
		return "", &InvalidArgumentError{URL: url, Reason: "not valid UTF-8 text"}
	}
	name := TargetName(url)
	switch name {
	case "":
		return "", &InvalidArgumentError{URL: url, Reason: "no file name after the last '/'"}
	case ".", "..":
		return "", &InvalidArgumentError{URL: url, Reason: fmt.Sprintf("file name %q is not usable", name)}
	}
	if strings.ContainsRune(name, 0) {
		return "", &InvalidArgumentError{URL: url, Reason: "file name contains a NUL byte"}
	}
	return name, nil
}

// FetchOne fetches url into the store unless its target already exists.
//
// A present target, whatever its size, is reported as Skipped without any
// request being made and without advancing the progress counter. A
// successful transfer advances it by exactly one.
func (f *Fetcher) FetchOne(ctx context.Context, url string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	name, err := Target(url)
	if err != nil {
		f.reporter.FileRejected()
		return Result{}, err
	}
	res := Result{URL: url, Name: name}

	exists, err := f.store.Exists(ctx, name)
	if err != nil {
		f.reporter.FileRejected()
		return Result{}, &TransferError{URL: url, Err: fmt.Errorf("check %s: %w", name, err)}
	}
	if exists {
		f.reporter.FileSkipped()
		res.Skipped = true
		return res, nil
	}

	f.reporter.FileStarted()

	resp, err := f.client.Get(ctx, url)
	if err != nil {
		f.reporter.FileFailed()
		return Result{}, &TransferError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	w, err := f.store.Create(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			f.reporter.FileDropped()
			res.Skipped = true
			return res, nil
		}
		f.reporter.FileFailed()
		return Result{}, &TransferError{URL: url, Err: fmt.Errorf("create %s: %w", name, err)}
	}

	bufp := f.bufPool.Get().(*[]byte)
	n, err := io.CopyBuffer(&countingWriter{w: w, reporter: f.reporter}, resp.Body, *bufp)
	f.bufPool.Put(bufp)
	if err != nil {
		w.Abort()
		f.reporter.FileFailed()
		return Result{}, &TransferError{URL: url, Err: fmt.Errorf("write %s: %w", name, err)}
	}

	if err := w.Commit(); err != nil {
		if errors.Is(err, store.ErrExists) {
			f.reporter.FileDropped()
			res.Skipped = true
			return res, nil
		}
		f.reporter.FileFailed()
		return Result{}, &TransferError{URL: url, Err: err}
	}

	f.reporter.FileCompleted()
	res.Bytes = n
	return res, nil
}

// FetchAll fetches every URL on a pool of Options.Workers goroutines and
// returns once all of them have finished. Order of completion is not
// defined.
//
// With FailFast the first failure cancels the remaining work and is
// returned as is. Otherwise all URLs are attempted and, if any failed, a
// *BatchError is returned alongside the summary.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) (*Summary, error) {
	summary := &Summary{Total: len(urls)}

	var mu sync.Mutex
	record := func(idx int, url string, res Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			summary.Failures = append(summary.Failures, FailedURL{Index: idx, URL: url, Err: err})
		case res.Skipped:
			summary.Skipped++
		default:
			summary.Fetched++
			summary.Bytes += res.Bytes
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Workers)

	for i, url := range urls {
		if gctx.Err() != nil {
			break
		}
		i, url := i, url
		g.Go(func() error {
			res, err := f.FetchOne(gctx, url)
			if err != nil && err == gctx.Err() {
				// Never started: the batch is already shutting down.
				return nil
			}
			record(i, url, res, err)
			if err != nil && f.opts.FailFast {
				return err
			}
			return nil
		})
	}

	waitErr := g.Wait()

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Index < summary.Failures[j].Index
	})

	if waitErr != nil {
		return summary, waitErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if len(summary.Failures) > 0 {
		return summary, &BatchError{Total: len(urls), Failures: summary.Failures}
	}
	return summary, nil
}

// FetchList reads the URL list at listPath and fetches it into st. A missing
// or unreadable list fails with *urllist.ConfigurationError before anything
// is fetched.
func FetchList(ctx context.Context, listPath string, st store.Store, opts Options) (*Summary, error) {
	urls, err := urllist.Read(listPath)
	if err != nil {
		return nil, err
	}
	return New(st, opts).FetchAll(ctx, urls)
}

// countingWriter reports bytes to the progress reporter as they are written.
type countingWriter struct {
	w        io.Writer
	reporter *progress.Reporter
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.reporter.BytesWritten(int64(n))
	return n, err
}
