package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultTimeout     = 300 * time.Second
	DefaultFastTimeout = 60 * time.Second
	DefaultOutputDir   = "output"
	DefaultReport      = "md"
)

// ReportFormats lists the accepted --report values.
var ReportFormats = []string{"md", "json", "csv"}

var ErrConflictingProfiles = errors.New("cannot use --fast and --deep together")

// Config holds every option for one autoscope run
type Config struct {
	// Target configuration
	Target    string
	OutputDir string

	// Scan profile (mutually exclusive)
	Fast bool
	Deep bool

	// Module selection
	OnlySubdomains bool
	NoDirs         bool
	NoScreenshots  bool

	// Reuse successful module outputs from an earlier run of the same target
	Resume bool

	ReportFormat string
	WordlistFile string
	ConfigFile   string

	// Timeouts per command, normally taken from the config file
	Timeout     time.Duration
	FastTimeout time.Duration

	Debug bool
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		OutputDir:    DefaultOutputDir,
		ReportFormat: DefaultReport,
		Timeout:      DefaultTimeout,
		FastTimeout:  DefaultFastTimeout,
	}
}

// Validate rejects option combinations that must stop the run before any module starts.
func (c *Config) Validate() error {
	if c.Fast && c.Deep {
		return ErrConflictingProfiles
	}
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("target is required (-t/--target)")
	}
	return ValidateReportFormat(c.ReportFormat)
}

// ValidateReportFormat accepts only the values listed in ReportFormats.
func ValidateReportFormat(f string) error {
	for _, v := range ReportFormats {
		if f == v {
			return nil
		}
	}
	return fmt.Errorf("invalid report format %q (choose from %s)", f, strings.Join(ReportFormats, ", "))
}

// Profile freezes the scan profile shared read-only by all modules.
func (c *Config) Profile() Profile {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if c.Fast {
		timeout = fastTimeout(c.FastTimeout, timeout)
	}
	return Profile{Fast: c.Fast, Deep: c.Deep, Timeout: timeout}
}

// fastTimeout keeps the fast profile strictly below the default timeout. A
// configured fast timeout that is not shorter falls back to the default ratio.
func fastTimeout(fast, full time.Duration) time.Duration {
	if fast <= 0 {
		fast = DefaultFastTimeout
	}
	if fast < full {
		return fast
	}
	return full / (DefaultTimeout / DefaultFastTimeout)
}

// WorkDir is the per-target directory every module writes into.
func (c *Config) WorkDir() string {
	base := c.OutputDir
	if base == "" {
		base = DefaultOutputDir
	}
	return filepath.Join(base, SanitizeTarget(c.Target))
}

// SanitizeTarget makes a target usable as a directory name.
func SanitizeTarget(target string) string {
	r := strings.NewReplacer(".", "_", "/", "_", ":", "_", "\\", "_")
	return r.Replace(strings.TrimSpace(target))
}

// Profile is the small option set passed to every module.
type Profile struct {
	Fast    bool
	Deep    bool
	Timeout time.Duration
}

func (p Profile) Name() string {
	switch {
	case p.Fast:
		return "fast"
	case p.Deep:
		return "deep"
	}
	return "default"
}
