package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config defines configuration for the skyfetch CLI.
type Config struct {
	InputURLList        string        `yaml:"input_url_list"`
	OutputDirectory     string        `yaml:"output_directory"`
	Workers             int           `yaml:"workers"`
	Timeout             time.Duration `yaml:"timeout"`
	BufferSize          int64         `yaml:"buffer_size"`
	FailFast            bool          `yaml:"fail_fast"`
	AtomicWrites        bool          `yaml:"atomic_writes"`
	Lock                bool          `yaml:"lock"`
	MinFreeSpace        int64         `yaml:"min_free_space"`
	Progress            bool          `yaml:"progress"`
	UserAgent           string        `yaml:"user_agent"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		InputURLList:        "url_list.txt",
		OutputDirectory:     "data",
		Workers:             16,
		BufferSize:          1024 * 1024, // 1MiB
		AtomicWrites:        true,
		Progress:            true,
		UserAgent:           "skyfetch",
		MaxIdleConnsPerHost: 100,
	}
}

// yamlConfig is used for YAML unmarshaling with string sizes and durations.
// Booleans are pointers so that an explicit false overrides a true default.
type yamlConfig struct {
	InputURLList        string `yaml:"input_url_list"`
	OutputDirectory     string `yaml:"output_directory"`
	Workers             int    `yaml:"workers"`
	Timeout             string `yaml:"timeout"`
	BufferSize          string `yaml:"buffer_size"`
	FailFast            *bool  `yaml:"fail_fast"`
	AtomicWrites        *bool  `yaml:"atomic_writes"`
	Lock                *bool  `yaml:"lock"`
	MinFreeSpace        string `yaml:"min_free_space"`
	Progress            *bool  `yaml:"progress"`
	UserAgent           string `yaml:"user_agent"`
	MaxIdleConnsPerHost int    `yaml:"max_idle_conns_per_host"`
}

// LoadFromFile loads configuration from a YAML file on top of Default.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.InputURLList != "" {
		cfg.InputURLList = yc.InputURLList
	}
	if yc.OutputDirectory != "" {
		cfg.OutputDirectory = yc.OutputDirectory
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.BufferSize != "" {
		size, err := parseSize(yc.BufferSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse buffer_size: %w", err)
		}
		cfg.BufferSize = size
	}
	if yc.MinFreeSpace != "" {
		size, err := parseSize(yc.MinFreeSpace)
		if err != nil {
			return Config{}, fmt.Errorf("parse min_free_space: %w", err)
		}
		cfg.MinFreeSpace = size
	}
	if yc.FailFast != nil {
		cfg.FailFast = *yc.FailFast
	}
	if yc.AtomicWrites != nil {
		cfg.AtomicWrites = *yc.AtomicWrites
	}
	if yc.Lock != nil {
		cfg.Lock = *yc.Lock
	}
	if yc.Progress != nil {
		cfg.Progress = *yc.Progress
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	if yc.MaxIdleConnsPerHost != 0 {
		cfg.MaxIdleConnsPerHost = yc.MaxIdleConnsPerHost
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the SKYFETCH_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("SKYFETCH_INPUT_URL_LIST"); v != "" {
		c.InputURLList = v
	}
	if v := os.Getenv("SKYFETCH_OUTPUT_DIRECTORY"); v != "" {
		c.OutputDirectory = v
	}
	if v := os.Getenv("SKYFETCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SKYFETCH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("SKYFETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SKYFETCH_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("SKYFETCH_BUFFER_SIZE"); v != "" {
		size, err := parseSize(v)
		if err != nil {
			return fmt.Errorf("parse SKYFETCH_BUFFER_SIZE: %w", err)
		}
		c.BufferSize = size
	}
	if v := os.Getenv("SKYFETCH_MIN_FREE_SPACE"); v != "" {
		size, err := parseSize(v)
		if err != nil {
			return fmt.Errorf("parse SKYFETCH_MIN_FREE_SPACE: %w", err)
		}
		c.MinFreeSpace = size
	}
	if v := os.Getenv("SKYFETCH_FAIL_FAST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse SKYFETCH_FAIL_FAST: %w", err)
		}
		c.FailFast = b
	}
	if v := os.Getenv("SKYFETCH_ATOMIC_WRITES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse SKYFETCH_ATOMIC_WRITES: %w", err)
		}
		c.AtomicWrites = b
	}
	if v := os.Getenv("SKYFETCH_LOCK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse SKYFETCH_LOCK: %w", err)
		}
		c.Lock = b
	}
	if v := os.Getenv("SKYFETCH_PROGRESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse SKYFETCH_PROGRESS: %w", err)
		}
		c.Progress = b
	}
	if v := os.Getenv("SKYFETCH_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("SKYFETCH_MAX_IDLE_CONNS_PER_HOST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SKYFETCH_MAX_IDLE_CONNS_PER_HOST: %w", err)
		}
		c.MaxIdleConnsPerHost = n
	}

	return nil
}

// parseSize parses a byte size such as "512KiB" or "4MB". SI suffixes are
// powers of 1000, IEC suffixes (KiB, MiB, GiB) powers of 1024.
func parseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	return int64(n), nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.InputURLList == "" {
		return errors.New("config: input URL list is required")
	}
	if c.OutputDirectory == "" {
		return errors.New("config: output directory is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.BufferSize <= 0 {
		return errors.New("config: buffer_size must be positive")
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	if c.MinFreeSpace < 0 {
		return errors.New("config: min_free_space must not be negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored, so boolean overrides can only turn
// an option on; use the dedicated setters on the CLI to turn one off.
func (c Config) Merge(override Config) Config {
	if override.InputURLList != "" {
		c.InputURLList = override.InputURLList
	}
	if override.OutputDirectory != "" {
		c.OutputDirectory = override.OutputDirectory
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.BufferSize != 0 {
		c.BufferSize = override.BufferSize
	}
	if override.FailFast {
		c.FailFast = override.FailFast
	}
	if override.AtomicWrites {
		c.AtomicWrites = override.AtomicWrites
	}
	if override.Lock {
		c.Lock = override.Lock
	}
	if override.MinFreeSpace != 0 {
		c.MinFreeSpace = override.MinFreeSpace
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.MaxIdleConnsPerHost != 0 {
		c.MaxIdleConnsPerHost = override.MaxIdleConnsPerHost
	}
	return c
}
