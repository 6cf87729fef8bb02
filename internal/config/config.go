package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultTimeout    = 0 // seconds, unbounded
	DefaultMemory     = 0 // MB, unbounded
	DefaultMaxAgeDays = 7

	MaxTimeout = 3600 // seconds
	MaxMemory  = 4096 // MB
)

// Config holds everything one invocation needs. It is built once by the
// CLI layer and passed in; the core never reads process-wide state.
type Config struct {
	// SourceFile is the resolved absolute path of the file to run
	SourceFile string

	// Extension is the resolved language extension (shebang may have
	// overridden the filename suffix)
	Extension string

	// Args are passed to the target program in order
	Args []string

	// Timeout bounds the target's wall-clock runtime in seconds (0 = unbounded)
	Timeout int

	// Memory is the memory limit in MB, enforced only under a sandbox (0 = unbounded)
	Memory int

	// Sandbox requests best-effort isolation
	Sandbox bool

	// NoCache disables build caching for this invocation
	NoCache bool

	// MaxAgeDays is the cache retention period
	MaxAgeDays int

	// CacheDir overrides the platform cache location (mainly for tests)
	CacheDir string

	// Verbose enables debug diagnostics
	Verbose bool
}

// Load folds viper state (defaults, config files, bound flags) into a
// Config and validates it.
func Load(sourceFile, extension string, args []string) (*Config, error) {
	cfg := &Config{
		SourceFile: sourceFile,
		Extension:  extension,
		Args:       args,
		Timeout:    viper.GetInt("timeout"),
		Memory:     viper.GetInt("memory"),
		Sandbox:    viper.GetBool("sandbox"),
		NoCache:    viper.GetBool("no-cache"),
		MaxAgeDays: viper.GetInt("max-age"),
		CacheDir:   viper.GetString("cache_dir"),
		Verbose:    viper.GetBool("verbose"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces ranges and resolves the source path.
func (c *Config) Validate() error {
	if c.SourceFile == "" {
		return fmt.Errorf("no source file specified")
	}

	abs, err := filepath.Abs(c.SourceFile)
	if err != nil {
		return fmt.Errorf("invalid source file path: %w", err)
	}

	c.SourceFile = abs

	if c.Timeout < 0 || c.Timeout > MaxTimeout {
		return fmt.Errorf("timeout must be between 0 and %d seconds", MaxTimeout)
	}

	if c.Memory < 0 || c.Memory > MaxMemory {
		return fmt.Errorf("memory limit must be between 0 and %d MB", MaxMemory)
	}

	if c.MaxAgeDays < 0 {
		return fmt.Errorf("cache max age must not be negative")
	}

	return nil
}

// TimeoutDuration returns the timeout as a duration (0 = unbounded).
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// MemoryBytes returns the memory limit in bytes (0 = unbounded).
func (c *Config) MemoryBytes() int64 {
	return int64(c.Memory) * 1024 * 1024
}

// MaxAge returns the cache retention period.
func (c *Config) MaxAge() time.Duration {
	days := c.MaxAgeDays
	if days == 0 {
		days = DefaultMaxAgeDays
	}

	return time.Duration(days) * 24 * time.Hour
}
