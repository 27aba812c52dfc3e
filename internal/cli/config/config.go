package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory
const FileName = "roundtrip.yml"

// EnvPrefix prefixes environment overrides, e.g. ROUNDTRIP_REGISTER=true
const EnvPrefix = "ROUNDTRIP"

// Config represents the roundtrip-gen configuration
type Config struct {
	OutputSuffix  string      `mapstructure:"output_suffix"`
	Register      bool        `mapstructure:"register"`
	LibraryImport string      `mapstructure:"library_import"`
	Directive     string      `mapstructure:"directive"`
	LogLevel      string      `mapstructure:"log_level"`
	Watch         WatchConfig `mapstructure:"watch"`
}

// WatchConfig represents watch mode configuration
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Default returns the configuration used when no file or environment sets a key
func Default() *Config {
	return &Config{
		OutputSuffix:  "_roundtrip.go",
		LibraryImport: "github.com/conduit-lang/roundtrip/pkg/roundtrip",
		Directive:     "roundtrip:derive",
		LogLevel:      "warn",
		Watch:         WatchConfig{Debounce: 100 * time.Millisecond},
	}
}

// Load loads the configuration from roundtrip.yml in dir, with ROUNDTRIP_*
// environment variables taking precedence. A missing file is not an error.
func Load(dir string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("output_suffix", def.OutputSuffix)
	v.SetDefault("register", def.Register)
	v.SetDefault("library_import", def.LibraryImport)
	v.SetDefault("directive", def.Directive)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("watch.debounce", def.Watch.Debounce)

	v.SetConfigFile(filepath.Join(dir, FileName))
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// isNotFound covers both lookup styles: a search path miss and an explicit
// file that does not exist.
func isNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}

// Level parses LogLevel
func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if !strings.HasSuffix(cfg.OutputSuffix, ".go") {
		return fmt.Errorf("output_suffix must end with '.go', got: %s", cfg.OutputSuffix)
	}
	if strings.HasSuffix(cfg.OutputSuffix, "_test.go") {
		return fmt.Errorf("output_suffix must not name test files, got: %s", cfg.OutputSuffix)
	}
	if cfg.LibraryImport == "" {
		return fmt.Errorf("library_import must not be empty")
	}
	if strings.TrimSpace(strings.TrimPrefix(cfg.Directive, "//")) == "" {
		return fmt.Errorf("directive must not be empty")
	}
	if _, err := cfg.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got: %s", cfg.Watch.Debounce)
	}
	return nil
}

// fileConfig is the on-disk layout written by Write
type fileConfig struct {
	OutputSuffix  string `yaml:"output_suffix"`
	Register      bool   `yaml:"register"`
	LibraryImport string `yaml:"library_import"`
	Directive     string `yaml:"directive"`
	LogLevel      string `yaml:"log_level"`
	Watch         struct {
		Debounce string `yaml:"debounce"`
	} `yaml:"watch"`
}

// Write validates cfg and saves it as roundtrip.yml in dir, returning the
// file's path.
func Write(dir string, cfg *Config) (string, error) {
	if err := validateConfig(cfg); err != nil {
		return "", err
	}

	out := fileConfig{
		OutputSuffix:  cfg.OutputSuffix,
		Register:      cfg.Register,
		LibraryImport: cfg.LibraryImport,
		Directive:     cfg.Directive,
		LogLevel:      cfg.LogLevel,
	}
	out.Watch.Debounce = cfg.Watch.Debounce.String()

	data, err := yaml.Marshal(&out)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
