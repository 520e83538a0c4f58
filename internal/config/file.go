package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileSettings is the on-disk configuration (~/.autoscope/config.yaml).
// Timeouts are in seconds.
type FileSettings struct {
	Wordlist    string `mapstructure:"wordlist" yaml:"wordlist"`
	Timeout     int    `mapstructure:"timeout" yaml:"timeout"`
	FastTimeout int    `mapstructure:"fast_timeout" yaml:"fast_timeout"`
}

// Dir returns ~/.autoscope, falling back to ./.autoscope without a home directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autoscope"
	}
	return filepath.Join(home, ".autoscope")
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultWordlist is where dir_bruteforce looks when nothing else is configured.
func DefaultWordlist() string {
	return filepath.Join(Dir(), "wordlists", "common.txt")
}

func defaultSettings() FileSettings {
	return FileSettings{
		Wordlist:    DefaultWordlist(),
		Timeout:     int(DefaultTimeout / time.Second),
		FastTimeout: int(DefaultFastTimeout / time.Second),
	}
}

// LoadFile reads settings from path, or from the default location when path is empty.
// A missing default file is not an error; a missing explicit file is.
// AUTOSCOPE_WORDLIST, AUTOSCOPE_TIMEOUT and AUTOSCOPE_FAST_TIMEOUT override the file.
func LoadFile(path string) (FileSettings, error) {
	def := defaultSettings()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("AUTOSCOPE")
	v.AutomaticEnv()
	v.SetDefault("wordlist", def.Wordlist)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("fast_timeout", def.FastTimeout)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return def, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var fs FileSettings
	if err := v.Unmarshal(&fs); err != nil {
		return def, fmt.Errorf("failed to decode config: %w", err)
	}
	return fs, nil
}

// Apply merges file settings into c. Values already set from flags win.
func (c *Config) Apply(fs FileSettings) {
	if c.WordlistFile == "" {
		c.WordlistFile = fs.Wordlist
	}
	if fs.Timeout > 0 {
		c.Timeout = time.Duration(fs.Timeout) * time.Second
	}
	if fs.FastTimeout > 0 {
		c.FastTimeout = time.Duration(fs.FastTimeout) * time.Second
	}
}

// WriteTemplate writes a config file populated with defaults.
// It refuses to overwrite an existing file unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(defaultSettings())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	header := []byte("# autoscope configuration\n# timeouts are per command, in seconds\n")
	return os.WriteFile(path, append(header, data...), 0644)
}
