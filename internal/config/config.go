// Package config loads and validates the qlimitd configuration: the
// downloader connection and the speed rule list. Values come from a JSON
// file, with QLIMITD_* environment variables overriding the downloader
// connection and the WebUI password optionally resolved from the OS
// keyring.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/rules"
	"github.com/spf13/afero"
)

// Configuration errors are fatal to the limit loop: the daemon stays up
// but the feature remains inactive until reconfigured.
var (
	ErrNoDownloader = errors.New("no downloader configured")
	ErrNoRules      = errors.New("no speed rules configured")
)

const envPrefix = "qlimitd"

// Downloader is the connection to the qBittorrent WebUI.
type Downloader struct {
	URL      string `json:"url"`
	Username string `json:"username,omitempty"`
	// Password is the WebUI password. Leave empty and set UseKeyring to
	// read it from the OS keyring instead of keeping it on disk.
	Password       string `json:"password,omitempty"`
	UseKeyring     bool   `json:"use_keyring,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// Web configures the optional HTTP JSON-RPC endpoint. The endpoint stays
// disabled unless both a listen address and a secret are set.
type Web struct {
	Listen string `json:"listen,omitempty"`
	Secret string `json:"secret,omitempty"`
}

// Config is the full daemon configuration.
type Config struct {
	Downloader Downloader   `json:"downloader"`
	Rules      []rules.Rule `json:"rules"`
	Web        *Web         `json:"web,omitempty"`
}

// envOverrides are applied on top of the file, mapped by envconfig:
// QLIMITD_DOWNLOADER_URL, QLIMITD_DOWNLOADER_PASSWORD and so on.
type envOverrides struct {
	DownloaderURL      string `envconfig:"DOWNLOADER_URL"`
	DownloaderUsername string `envconfig:"DOWNLOADER_USERNAME"`
	DownloaderPassword string `envconfig:"DOWNLOADER_PASSWORD"`
	WebListen          string `envconfig:"WEB_LISTEN"`
	WebSecret          string `envconfig:"WEB_SECRET"`
}

// DefaultPath returns the config file path: QLIMITD_CONFIG if set,
// otherwise <user config dir>/qlimitd/config.json.
func DefaultPath() string {
	if p := os.Getenv(common.ConfigPathEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "qlimitd", "config.json")
}

// Load reads, overrides and validates the configuration at path.
func Load(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.resolvePassword(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := envconfig.Process(envPrefix, &o); err != nil {
		return fmt.Errorf("reading environment overrides: %w", err)
	}
	if o.DownloaderURL != "" {
		c.Downloader.URL = o.DownloaderURL
	}
	if o.DownloaderUsername != "" {
		c.Downloader.Username = o.DownloaderUsername
	}
	if o.DownloaderPassword != "" {
		c.Downloader.Password = o.DownloaderPassword
		c.Downloader.UseKeyring = false
	}
	if o.WebListen != "" || o.WebSecret != "" {
		if c.Web == nil {
			c.Web = &Web{}
		}
		if o.WebListen != "" {
			c.Web.Listen = o.WebListen
		}
		if o.WebSecret != "" {
			c.Web.Secret = o.WebSecret
		}
	}
	return nil
}

func (c *Config) resolvePassword() error {
	if !c.Downloader.UseKeyring || c.Downloader.Password != "" {
		return nil
	}
	pass, err := GetPassword(c.Downloader.Username)
	if err != nil {
		return fmt.Errorf("reading downloader password from keyring: %w", err)
	}
	c.Downloader.Password = pass
	return nil
}

// Validate reports the configuration errors that keep the limit loop from
// starting. An individually malformed cron expression is deliberately not
// one of them: such rules are skipped at evaluation time with a warning.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Downloader.URL == "" {
		result = multierror.Append(result, ErrNoDownloader)
	}
	if len(c.Rules) == 0 {
		result = multierror.Append(result, ErrNoRules)
	}
	for i, r := range c.Rules {
		if r.UploadLimit < rules.Unlimited || r.DownloadLimit < rules.Unlimited {
			result = multierror.Append(result, fmt.Errorf("rule %d: limits below %d are invalid", i, rules.Unlimited))
		}
	}
	return result.ErrorOrNil()
}

// Timeout returns the downloader request timeout.
func (c *Config) Timeout() time.Duration {
	if c.Downloader.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Downloader.TimeoutSeconds) * time.Second
}

// WebEnabled reports whether the HTTP JSON-RPC endpoint should start.
func (c *Config) WebEnabled() bool {
	return c.Web != nil && c.Web.Listen != "" && c.Web.Secret != ""
}
