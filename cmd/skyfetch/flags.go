package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ligustah/skyfetch/internal/config"
)

var (
	inputFlag = &cli.StringFlag{
		Name:    "input-url-list",
		Aliases: []string{"i"},
		Usage:   "file with one URL per line",
		Value:   "url_list.txt",
	}
	outputFlag = &cli.StringFlag{
		Name:    "output-directory",
		Aliases: []string{"o"},
		Usage:   "directory (created if absent) or bucket URL such as s3://maps?prefix=data/",
		Value:   "data",
	}
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML configuration file",
	}
)

// loadConfig layers defaults, the optional config file, SKYFETCH_*
// environment variables and explicitly set flags, then validates the result.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String(configFlag.Name); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	var override config.Config
	if c.IsSet(inputFlag.Name) {
		override.InputURLList = c.String(inputFlag.Name)
	}
	if c.IsSet(outputFlag.Name) {
		override.OutputDirectory = c.String(outputFlag.Name)
	}
	if c.IsSet("workers") {
		override.Workers = c.Int("workers")
		if override.Workers <= 0 {
			return config.Config{}, fmt.Errorf("config: workers must be positive")
		}
	}
	if c.IsSet("timeout") {
		override.Timeout = c.Duration("timeout")
	}
	override.FailFast = c.Bool("fail-fast")
	override.Lock = c.Bool("lock")
	cfg = cfg.Merge(override)

	// Merge cannot turn options off.
	if c.Bool("no-atomic") {
		cfg.AtomicWrites = false
	}
	if c.Bool("quiet") {
		cfg.Progress = false
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
