package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
	"github.com/qepting91/reddit-stream-monitor/internal/ingest"
	"gopkg.in/yaml.v3"
)

// Config is the monitor's settings document. It is loaded once at
// startup and passed by value to every component.
type Config struct {
	Subreddit    string   `yaml:"subreddit" toml:"subreddit"`
	TitleFilter  string   `yaml:"title_filter" toml:"title_filter"`
	Keywords     []string `yaml:"keywords" toml:"keywords"`
	KeywordsFile string   `yaml:"keywords_file" toml:"keywords_file"`
	SkipExisting bool     `yaml:"skip_existing" toml:"skip_existing"`
	BeepAllPosts bool     `yaml:"beep_all_posts" toml:"beep_all_posts"`
	Beep         Beep     `yaml:"beep" toml:"beep"`
	ColorFlairs  bool     `yaml:"color_flairs" toml:"color_flairs"`
	LoggingLevel string   `yaml:"logging_level" toml:"logging_level"`

	// CallbackAddr is where the OAuth redirect is received.
	CallbackAddr string        `yaml:"callback_addr" toml:"callback_addr"`
	PollInterval time.Duration `yaml:"poll_interval" toml:"poll_interval"`

	// Optional outputs; empty disables them.
	HitLog        string `yaml:"hit_log" toml:"hit_log"`
	DashboardAddr string `yaml:"dashboard_addr" toml:"dashboard_addr"`
	MetricsAddr   string `yaml:"metrics_addr" toml:"metrics_addr"`

	Credentials Credentials `yaml:"-" toml:"-"`
}

type Beep struct {
	Enabled   bool `yaml:"enabled" toml:"enabled"`
	Frequency int  `yaml:"frequency" toml:"frequency"` // Hz
	Duration  int  `yaml:"duration" toml:"duration"`   // ms
}

// Credentials are never read from the settings file.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	RedirectURI  string
}

// Default returns the settings used for any key the file leaves out.
func Default() Config {
	return Config{
		Beep:         Beep{Enabled: false, Frequency: 1440, Duration: 100},
		ColorFlairs:  true,
		LoggingLevel: "info",
		CallbackAddr: "localhost:8080",
		PollInterval: 2 * time.Second,
	}
}

// ResolveEnv fills credentials from the process environment.
func (c *Config) ResolveEnv() {
	c.Credentials = Credentials{
		ClientID:     os.Getenv("CLIENT_ID"),
		ClientSecret: os.Getenv("CLIENT_SECRET"),
		Username:     os.Getenv("USERNAME"),
		Password:     os.Getenv("PASSWORD"),
		UserAgent:    os.Getenv("USER_AGENT"),
		RedirectURI:  os.Getenv("REDIRECT_URI"),
	}
}

// Load reads the settings document at path, merges the keyword file,
// resolves credentials and validates. A .toml extension selects TOML;
// anything else is read as YAML, which also covers JSON. Every failure is
// a config error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, domain.E(domain.KindConfig, "read "+path, err)
	}
	if err := decode(path, b, &cfg); err != nil {
		return cfg, domain.E(domain.KindConfig, "parse "+path, err)
	}
	if cfg.KeywordsFile != "" {
		kwPath := cfg.KeywordsFile
		if !filepath.IsAbs(kwPath) {
			kwPath = filepath.Join(filepath.Dir(path), kwPath)
		}
		kws, err := ingest.LoadKeywords(kwPath)
		if err != nil {
			return cfg, domain.E(domain.KindConfig, "keywords file", err)
		}
		cfg.Keywords = append(cfg.Keywords, kws...)
	}
	cfg.ResolveEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(b), cfg)
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

// Validate checks the settings that have no sensible fallback.
func (c Config) Validate() error {
	var errs []error
	if c.Subreddit == "" {
		errs = append(errs, errors.New("subreddit is required"))
	} else if !ingest.ValidSubreddit(c.Subreddit) {
		errs = append(errs, fmt.Errorf("invalid subreddit name %q", c.Subreddit))
	}
	if c.Beep.Frequency < 37 || c.Beep.Frequency > 32767 {
		errs = append(errs, fmt.Errorf("beep frequency %d outside [37, 32767]", c.Beep.Frequency))
	}
	if c.Beep.Duration <= 0 {
		errs = append(errs, fmt.Errorf("beep duration must be positive, got %d", c.Beep.Duration))
	}
	if _, err := ParseLevel(c.LoggingLevel); err != nil {
		errs = append(errs, err)
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}
	if c.CallbackAddr == "" {
		errs = append(errs, errors.New("callback_addr is required"))
	}
	for i, kw := range c.Keywords {
		switch {
		case !utf8.ValidString(kw):
			errs = append(errs, fmt.Errorf("keyword %d (%q) is not valid UTF-8", i, kw))
		case strings.TrimSpace(kw) == "":
			errs = append(errs, fmt.Errorf("keyword %d is empty", i))
		}
	}
	if len(errs) > 0 {
		return domain.E(domain.KindConfig, "validate", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps a logging_level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown logging level %q", s)
}
