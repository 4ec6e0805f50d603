// Package config handles snip configuration: a TOML file, SNIP_*
// environment overrides and, on top of both, command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"snippet_find/internal/extract"
	"snippet_find/pkg/snippets"
)

// Config is the full snip configuration.
type Config struct {
	Snippets SnippetsConfig `toml:"snippets"`
	Search   SearchConfig   `toml:"search"`
	PDF      PDFConfig      `toml:"pdf"`
	Output   OutputConfig   `toml:"output"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

type SnippetsConfig struct {
	MinLength int `toml:"min_length"`
	MaxLength int `toml:"max_length"`
	Lookahead int `toml:"lookahead"`
	// Sentences selects the sentence breaker: uax29 or punctuation.
	Sentences string `toml:"sentences"`
}

type SearchConfig struct {
	Roots   []string `toml:"roots"`
	Workers int      `toml:"workers"`
	// MaxTextBytes caps the text kept per document.
	MaxTextBytes int64 `toml:"max_text_bytes"`
	// MaxFileBytes caps the raw size of text and markdown files.
	MaxFileBytes int64  `toml:"max_file_bytes"`
	Cache        bool   `toml:"cache"`
	CacheDir     string `toml:"cache_dir"`
}

type PDFConfig struct {
	PageWorkers  int   `toml:"page_workers"`
	MaxFileBytes int64 `toml:"max_file_bytes"`
}

type OutputConfig struct {
	// Format is one of text, json, jsonl or yaml.
	Format string `toml:"format"`
	// Color is auto, always or never.
	Color     string `toml:"color"`
	MarkOpen  string `toml:"mark_open"`
	MarkClose string `toml:"mark_close"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Snippets: SnippetsConfig{
			MinLength: snippets.DefaultMinLength,
			MaxLength: snippets.DefaultMaxLength,
			Lookahead: snippets.DefaultLookahead,
			Sentences: "uax29",
		},
		Search: SearchConfig{
			Cache:    true,
			CacheDir: defaultCacheDir(),
		},
		PDF: PDFConfig{
			PageWorkers:  1,
			MaxFileBytes: 20 * 1024 * 1024,
		},
		Output: OutputConfig{
			Format:    "text",
			Color:     "auto",
			MarkOpen:  "【",
			MarkClose: "】",
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load loads the configuration from the default location.
// Returns the default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path. Keys missing from
// the file keep their defaults; SNIP_* variables override the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/snip/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "snip", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "snip", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "snip")
	}
	return filepath.Join(os.TempDir(), "snip-cache")
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := ParseBreaker(c.Snippets.Sentences); err != nil {
		return err
	}
	switch c.Output.Format {
	case "text", "json", "jsonl", "yaml":
	default:
		return fmt.Errorf("output.format %q: want text, json, jsonl or yaml", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color %q: want auto, always or never", c.Output.Color)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	return nil
}

// SnippetConfig returns the snippet builder settings.
func (c *Config) SnippetConfig() snippets.Config {
	return snippets.Config{
		MinLength: c.Snippets.MinLength,
		MaxLength: c.Snippets.MaxLength,
		Lookahead: c.Snippets.Lookahead,
	}
}

// ParseBreaker maps a sentence breaker name to its implementation.
func ParseBreaker(name string) (snippets.Breaker, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "uax29":
		return snippets.UAX29, nil
	case "punctuation":
		return snippets.Punctuation, nil
	default:
		return nil, fmt.Errorf("snippets.sentences %q: want uax29 or punctuation", name)
	}
}

// Breaker returns the configured sentence breaker, UAX#29 when unset.
func (c *Config) Breaker() snippets.Breaker {
	br, err := ParseBreaker(c.Snippets.Sentences)
	if err != nil {
		return snippets.UAX29
	}
	return br
}

// ExtractOptions returns the document reader settings.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{
		MaxBytes:     c.Search.MaxTextBytes,
		MaxFileBytes: c.Search.MaxFileBytes,
		PDF: extract.PDFOptions{
			PageWorkers:  c.PDF.PageWorkers,
			MaxFileBytes: c.PDF.MaxFileBytes,
		},
	}
}

func (c *Config) applyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"SNIP_MIN_LENGTH", &c.Snippets.MinLength},
		{"SNIP_MAX_LENGTH", &c.Snippets.MaxLength},
		{"SNIP_LOOKAHEAD", &c.Snippets.Lookahead},
		{"SNIP_WORKERS", &c.Search.Workers},
		{"SNIP_PDF_PAGE_WORKERS", &c.PDF.PageWorkers},
	}
	for _, e := range ints {
		if err := envInt(e.key, e.dst); err != nil {
			return err
		}
	}
	if err := envInt64("SNIP_PDF_MAX_FILE_BYTES", &c.PDF.MaxFileBytes); err != nil {
		return err
	}
	if err := envInt64("SNIP_MAX_TEXT_BYTES", &c.Search.MaxTextBytes); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("SNIP_CACHE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("SNIP_CACHE: %w", err)
		}
		c.Search.Cache = b
	}
	if v, ok := os.LookupEnv("SNIP_ROOTS"); ok {
		c.Search.Roots = filepath.SplitList(v)
	}
	c.Snippets.Sentences = getEnv("SNIP_SENTENCES", c.Snippets.Sentences)
	c.Search.CacheDir = getEnv("SNIP_CACHE_DIR", c.Search.CacheDir)
	c.Output.Format = getEnv("SNIP_FORMAT", c.Output.Format)
	c.Output.Color = getEnv("SNIP_COLOR", c.Output.Color)
	c.Server.Addr = getEnv("SNIP_ADDR", c.Server.Addr)
	c.Log.Level = getEnv("SNIP_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("SNIP_LOG_FORMAT", c.Log.Format)
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func envInt(key string, dst *int) error {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
