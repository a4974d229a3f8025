package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ligustah/skyfetch/internal/store"
)

func cleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "remove temporary parts left behind by interrupted runs",
		Description: `A local directory is locked while it is cleaned, so clean fails
instead of racing a fetch that was started with --lock.`,
		Flags:  []cli.Flag{outputFlag, configFlag},
		Action: runClean,
	}
}

func runClean(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return exitf(ExitConfigError, "%v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	st, err := store.Open(ctx, cfg.OutputDirectory, store.Options{Lock: true})
	if err != nil {
		return exitf(ExitStorageError, "%v", err)
	}
	defer st.Close()

	entries, err := st.List(ctx)
	if err != nil {
		return exitf(ExitStorageError, "%v", err)
	}

	removed := 0
	for _, e := range entries {
		if !store.IsPart(e.Name) {
			continue
		}
		if err := st.Remove(ctx, e.Name); err != nil {
			return exitf(ExitStorageError, "remove %s: %v", e.Name, err)
		}
		removed++
	}

	fmt.Printf("[skyfetch] Removed %d temporary parts from %s\n", removed, st.Location())
	return nil
}
