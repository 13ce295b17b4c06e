package config

import (
	"os"
	"path/filepath"
	"strings"
)

const envPrefix = "STYLUSNOTES_"

// envSections are matched against STYLUSNOTES_<SECTION>_<KEY>; anything
// else after the prefix is a root key.
var envSections = []string{"database", "canvas", "janitor"}

// Loader finds and reads the RC file.
type Loader struct {
	OverridePath string // from --config
}

// NewLoader creates a Loader. overridePath may be empty.
func NewLoader(overridePath string) *Loader {
	return &Loader{OverridePath: overridePath}
}

// Load reads the RC file over the defaults, then applies the environment.
// A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if cfg, err = Parse(f); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Environ()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		p := filepath.Join(xdg, "stylusnotes", "config")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	home, _ := os.UserHomeDir()
	p := filepath.Join(home, ".config", "stylusnotes", "config")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// ApplyEnv overrides settings from STYLUSNOTES_* entries in environ
// (KEY=VALUE form). STYLUSNOTES_SECRET_* belongs to the secret store and is skipped.
func (c *Config) ApplyEnv(environ []string) error {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		rest := strings.ToLower(strings.TrimPrefix(name, envPrefix))
		if strings.HasPrefix(rest, "secret_") {
			continue
		}
		section, key := "", rest
		for _, s := range envSections {
			if k, found := strings.CutPrefix(rest, s+"_"); found {
				section, key = s, k
				break
			}
		}
		if err := c.Set(section, key, value); err != nil {
			return err
		}
	}
	return nil
}
