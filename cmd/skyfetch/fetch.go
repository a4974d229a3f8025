package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ligustah/skyfetch/internal/config"
	"github.com/ligustah/skyfetch/internal/fetcher"
	fetchhttp "github.com/ligustah/skyfetch/internal/http"
	"github.com/ligustah/skyfetch/internal/progress"
	"github.com/ligustah/skyfetch/internal/store"
	"github.com/ligustah/skyfetch/internal/urllist"
)

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "download every URL in the list that is not present yet (default)",
		Flags: []cli.Flag{
			inputFlag,
			outputFlag,
			configFlag,
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "number of parallel downloads",
				Value:   fetcher.DefaultWorkers,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout, 0 for none",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "stop at the first failed URL instead of attempting all of them",
			},
			&cli.BoolFlag{
				Name:  "no-atomic",
				Usage: "write straight into the target file instead of a temporary part",
			},
			&cli.BoolFlag{
				Name:  "lock",
				Usage: "take an exclusive lock on the output directory",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "no progress bar",
			},
		},
		Action: runFetch,
	}
}

func runFetch(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return exitf(ExitConfigError, "%v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	return fetchAll(ctx, cfg)
}

// fetchAll reads the URL list, opens the output location and fetches.
// The list is read first so that a bad path leaves the output untouched.
func fetchAll(ctx context.Context, cfg config.Config) error {
	urls, err := urllist.Read(cfg.InputURLList)
	if err != nil {
		return exitf(ExitConfigError, "%v", err)
	}

	st, err := store.Open(ctx, cfg.OutputDirectory, store.Options{
		Atomic:       cfg.AtomicWrites,
		Lock:         cfg.Lock,
		MinFreeSpace: cfg.MinFreeSpace,
	})
	if err != nil {
		return exitf(ExitStorageError, "%v", err)
	}
	defer st.Close()

	reporter := progress.NewReporter(progress.Options{
		Total:       len(urls),
		Workers:     cfg.Workers,
		Destination: st.Location(),
		Quiet:       !cfg.Progress,
	})
	reporter.Start()

	summary, err := fetcher.New(st, fetcher.Options{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		FailFast:   cfg.FailFast,
		Progress:   reporter,
		HTTPOptions: fetchhttp.Options{
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			Timeout:             cfg.Timeout,
			UserAgent:           cfg.UserAgent,
		},
	}).FetchAll(ctx, urls)

	reporter.Stop()

	failed := 0
	for _, f := range summary.Failures {
		// Transfers cut short by an interrupt are not failures of their URL.
		if ctx.Err() != nil && errors.Is(f.Err, context.Canceled) {
			continue
		}
		failed++
		fmt.Fprintf(os.Stderr, "[skyfetch] Failed (line %d): %v\n", f.Index+1, f.Err)
	}
	if !cfg.Progress {
		fmt.Fprintf(os.Stderr, "[skyfetch] Fetched: %d | Skipped: %d | Failed: %d | Total: %d\n",
			summary.Fetched, summary.Skipped, failed, summary.Total)
	}

	return fetchError(ctx, err)
}

// fetchError maps the outcome of a batch to an exit code. Errors that do
// not come from a URL, such as a store that fails underneath the run, are
// general errors.
func fetchError(ctx context.Context, err error) error {
	var (
		batchErr    *fetcher.BatchError
		transferErr *fetcher.TransferError
		invalidErr  *fetcher.InvalidArgumentError
	)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return exitf(ExitInterrupted, "interrupted, run again to fetch the remaining files")
	case errors.As(err, &batchErr):
		return exitf(ExitFetchFailed, "%d of %d URLs failed", len(batchErr.Failures), batchErr.Total)
	case errors.As(err, &transferErr), errors.As(err, &invalidErr):
		return exitf(ExitFetchFailed, "%v", err)
	default:
		return exitf(ExitGeneralError, "%v", err)
	}
}
