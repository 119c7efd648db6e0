package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeKeywords writes a keyword CSV next to a config that names it.
func writeKeywords(t *testing.T, dir, name, csv string) string {
	t.Helper()
	kw := strings.TrimSuffix(name, ".json") + ".csv"
	writeFile(t, dir, kw, csv)
	return writeFile(t, dir, name, `{"subreddit": "golang", "keywords_file": "`+kw+`"}`)
}

func TestLoadJSONDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
  "subreddit": "golang",
  "title_filter": "Help",
  "keywords": ["urgent", "panic"],
  "skip_existing": true,
  "beep_all_posts": false,
  "beep": {"enabled": true, "frequency": 880, "duration": 250},
  "color_flairs": false,
  "logging_level": "DEBUG"
}`)
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("REDIRECT_URI", "http://localhost:8080")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Subreddit != "golang" || cfg.TitleFilter != "Help" || !cfg.SkipExisting {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Keywords, []string{"urgent", "panic"}) {
		t.Fatalf("keywords = %q", cfg.Keywords)
	}
	if cfg.Beep != (Beep{Enabled: true, Frequency: 880, Duration: 250}) {
		t.Fatalf("beep = %+v", cfg.Beep)
	}
	if cfg.ColorFlairs {
		t.Fatalf("color_flairs should be false")
	}
	if cfg.Credentials.ClientID != "id" || cfg.Credentials.RedirectURI != "http://localhost:8080" {
		t.Fatalf("credentials = %+v", cfg.Credentials)
	}
	if cfg.CallbackAddr != "localhost:8080" || cfg.PollInterval != 2*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadYAMLWithKeywordsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keywords.csv", "keyword\noutage\n")
	path := writeFile(t, dir, "config.yaml", `
subreddit: sysadmin
keywords: [urgent]
keywords_file: keywords.csv
poll_interval: 5s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Keywords, []string{"urgent", "outage"}) {
		t.Fatalf("keywords = %q", cfg.Keywords)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("poll interval = %s", cfg.PollInterval)
	}
	if !cfg.ColorFlairs || cfg.Beep.Frequency != 1440 || cfg.Beep.Duration != 100 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadTOMLDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "monitor.toml", `
subreddit = "homelab"
keywords = ["fire", "smoke"]
beep_all_posts = true
poll_interval = "10s"
hit_log = "hits.ndjson"

[beep]
enabled = true
frequency = 600
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Subreddit != "homelab" || !cfg.BeepAllPosts || cfg.HitLog != "hits.ndjson" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Keywords, []string{"fire", "smoke"}) {
		t.Fatalf("keywords = %q", cfg.Keywords)
	}
	if cfg.Beep != (Beep{Enabled: true, Frequency: 600, Duration: 100}) {
		t.Fatalf("beep = %+v", cfg.Beep)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Fatalf("poll interval = %s", cfg.PollInterval)
	}
}

func TestLoadErrorsAreConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing file", filepath.Join(dir, "absent.json"), "read"},
		{"malformed", writeFile(t, dir, "bad.json", `{"subreddit": `), "parse"},
		{"malformed toml", writeFile(t, dir, "bad.toml", `subreddit = `), "parse"},
		{"no subreddit", writeFile(t, dir, "empty.json", `{}`), "subreddit is required"},
		{"bad subreddit", writeFile(t, dir, "badsub.json", `{"subreddit": "r/go lang"}`), "invalid subreddit"},
		{"keywords file not utf-8", writeKeywords(t, dir, "badkw.json", "keyword\nurg\xffent\n"), "not valid UTF-8"},
		{"missing keywords file", writeFile(t, dir, "kw.json", `{"subreddit": "golang", "keywords_file": "nope.csv"}`), "keywords file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, domain.ErrConfig) {
				t.Fatalf("expected config error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := Default()
	base.Subreddit = "golang"
	if err := base.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"frequency too low", func(c *Config) { c.Beep.Frequency = 10 }},
		{"frequency too high", func(c *Config) { c.Beep.Frequency = 40000 }},
		{"zero duration", func(c *Config) { c.Beep.Duration = 0 }},
		{"bad level", func(c *Config) { c.LoggingLevel = "loud" }},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }},
		{"empty keyword", func(c *Config) { c.Keywords = []string{"ok", "  "} }},
		{"no callback", func(c *Config) { c.CallbackAddr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, domain.ErrConfig) {
				t.Fatalf("expected config error, got %v", err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warning", "error", ""} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}
