package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ligustah/skyfetch/internal/fetcher"
	"github.com/ligustah/skyfetch/internal/store"
	"github.com/ligustah/skyfetch/internal/urllist"
)

// StatusResult compares a URL list against the contents of an output
// location.
type StatusResult struct {
	Total   int
	Present int
	Missing []string // URLs whose target does not exist
	Empty   []string // URLs whose target exists with zero bytes
	Invalid []string // URLs with no usable target name
	Parts   int      // leftover temporary parts
}

// Complete reports whether every URL has a non-empty target.
func (r *StatusResult) Complete() bool {
	return len(r.Missing) == 0 && len(r.Empty) == 0 && len(r.Invalid) == 0
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "report which URLs of the list are present, without downloading",
		Description: `Zero-byte files are listed separately: they usually come from a write
that was interrupted while --no-atomic was in effect, and fetch treats them
as present.`,
		Flags:  []cli.Flag{inputFlag, outputFlag, configFlag},
		Action: runStatus,
	}
}

func runStatus(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return exitf(ExitConfigError, "%v", err)
	}

	urls, err := urllist.Read(cfg.InputURLList)
	if err != nil {
		return exitf(ExitConfigError, "%v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	entries, err := listLocation(ctx, cfg.OutputDirectory)
	if err != nil {
		return exitf(ExitStorageError, "%v", err)
	}

	result := checkStatus(urls, entries)

	fmt.Printf("List: %s\n", cfg.InputURLList)
	fmt.Printf("Output: %s\n", cfg.OutputDirectory)
	fmt.Printf("URLs: %d | Present: %d | Missing: %d | Empty: %d | Invalid: %d\n",
		result.Total, result.Present, len(result.Missing), len(result.Empty), len(result.Invalid))
	if result.Parts > 0 {
		fmt.Printf("Leftover temporary parts: %d (remove with 'skyfetch clean')\n", result.Parts)
	}

	printList("Missing", result.Missing)
	printList("Empty", result.Empty)
	printList("Invalid", result.Invalid)

	if result.Complete() {
		fmt.Println("Status: COMPLETE")
		return nil
	}
	fmt.Println("Status: INCOMPLETE")
	return cli.Exit("", ExitIncomplete)
}

// listLocation lists an output location without creating it.
func listLocation(ctx context.Context, location string) ([]store.Entry, error) {
	if !strings.Contains(location, "://") {
		if _, err := os.Stat(location); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
	}

	st, err := store.Open(ctx, location, store.Options{})
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.List(ctx)
}

func checkStatus(urls []string, entries []store.Entry) *StatusResult {
	sizes := make(map[string]int64, len(entries))
	result := &StatusResult{Total: len(urls)}
	for _, e := range entries {
		if store.IsPart(e.Name) {
			result.Parts++
			continue
		}
		sizes[e.Name] = e.Size
	}

	for _, url := range urls {
		name, err := fetcher.Target(url)
		if err != nil {
			result.Invalid = append(result.Invalid, url)
			continue
		}
		size, ok := sizes[name]
		switch {
		case !ok:
			result.Missing = append(result.Missing, url)
		case size == 0:
			result.Empty = append(result.Empty, url)
		default:
			result.Present++
		}
	}
	return result
}

func printList(title string, urls []string) {
	if len(urls) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, u := range urls {
		fmt.Printf("  - %s\n", u)
	}
}
