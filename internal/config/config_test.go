package config

import (
	"errors"
	"testing"
	"time"

	"github.com/qlimitd/qlimitd/internal/rules"
	"github.com/spf13/afero"
)

func writeConfig(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %s", err)
	}
}

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, "/etc/qlimitd/config.json", `{
		"downloader": {
			"url": "http://localhost:8080",
			"username": "admin",
			"password": "adminadmin",
			"timeout_seconds": 5
		},
		"rules": [
			{"cron": "0 8-23 * * *", "upload_limit": 2, "download_limit": 10},
			{"cron": "0 0-7 * * *", "upload_limit": -1, "download_limit": -1}
		]
	}`)
	c, err := Load(fsys, "/etc/qlimitd/config.json")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if c.Downloader.URL != "http://localhost:8080" {
		t.Errorf("unexpected url: %s", c.Downloader.URL)
	}
	if len(c.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(c.Rules))
	}
	if c.Rules[0].UploadLimit != 2 || c.Rules[1].DownloadLimit != -1 {
		t.Errorf("rules parsed incorrectly: %+v", c.Rules)
	}
	if c.Timeout() != 5*time.Second {
		t.Errorf("unexpected timeout: %s", c.Timeout())
	}
	if c.WebEnabled() {
		t.Error("web endpoint should be disabled without listen and secret")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.json")
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, "/c.json", `{"downloader":`)
	if _, err := Load(fsys, "/c.json"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadNoDownloader(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, "/c.json", `{
		"rules": [{"cron": "* * * * *", "upload_limit": 1, "download_limit": 1}]
	}`)
	_, err := Load(fsys, "/c.json")
	if !errors.Is(err, ErrNoDownloader) {
		t.Fatalf("expected ErrNoDownloader, got %v", err)
	}
}

func TestLoadNoRules(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, "/c.json", `{
		"downloader": {"url": "http://localhost:8080"},
		"rules": []
	}`)
	_, err := Load(fsys, "/c.json")
	if !errors.Is(err, ErrNoRules) {
		t.Fatalf("expected ErrNoRules, got %v", err)
	}
}

func TestValidateAggregates(t *testing.T) {
	c := &Config{}
	err := c.Validate()
	if !errors.Is(err, ErrNoDownloader) || !errors.Is(err, ErrNoRules) {
		t.Fatalf("expected both configuration errors, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QLIMITD_DOWNLOADER_URL", "http://other:9090")
	t.Setenv("QLIMITD_DOWNLOADER_PASSWORD", "fromenv")
	t.Setenv("QLIMITD_WEB_LISTEN", "127.0.0.1:7095")
	t.Setenv("QLIMITD_WEB_SECRET", "s3cret")

	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, "/c.json", `{
		"downloader": {"url": "http://localhost:8080", "username": "admin", "use_keyring": true},
		"rules": [{"cron": "* * * * *", "upload_limit": 1, "download_limit": 1}]
	}`)
	c, err := Load(fsys, "/c.json")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if c.Downloader.URL != "http://other:9090" {
		t.Errorf("url override not applied: %s", c.Downloader.URL)
	}
	// An env password wins over the keyring.
	if c.Downloader.Password != "fromenv" {
		t.Errorf("password override not applied: %s", c.Downloader.Password)
	}
	if !c.WebEnabled() {
		t.Error("web endpoint should be enabled via env")
	}
	if c.Web.Listen != "127.0.0.1:7095" || c.Web.Secret != "s3cret" {
		t.Errorf("web override not applied: %+v", c.Web)
	}
}

func TestKeyringPassword(t *testing.T) {
	origGet := keyringGet
	defer func() { keyringGet = origGet }()
	keyringGet = func(service, user string) (string, error) {
		if service != keyringService || user != "admin" {
			t.Errorf("unexpected keyring lookup: %s/%s", service, user)
		}
		return "fromkeyring", nil
	}

	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, "/c.json", `{
		"downloader": {"url": "http://localhost:8080", "username": "admin", "use_keyring": true},
		"rules": [{"cron": "* * * * *", "upload_limit": 1, "download_limit": 1}]
	}`)
	c, err := Load(fsys, "/c.json")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if c.Downloader.Password != "fromkeyring" {
		t.Errorf("keyring password not resolved: %s", c.Downloader.Password)
	}
}

func TestKeyringFailure(t *testing.T) {
	origGet := keyringGet
	defer func() { keyringGet = origGet }()
	keyringGet = func(service, user string) (string, error) {
		return "", errors.New("no such secret")
	}

	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, "/c.json", `{
		"downloader": {"url": "http://localhost:8080", "username": "admin", "use_keyring": true},
		"rules": [{"cron": "* * * * *", "upload_limit": 1, "download_limit": 1}]
	}`)
	if _, err := Load(fsys, "/c.json"); err == nil {
		t.Fatal("expected keyring failure to surface")
	}
}

func TestRuleLimitBoundsChecked(t *testing.T) {
	c := &Config{
		Downloader: Downloader{URL: "http://localhost:8080"},
		Rules: []rules.Rule{
			{Cron: "* * * * *", UploadLimit: -2, DownloadLimit: 1},
		},
	}
	if err := c.Validate(); err == nil {
		t.Fatal("expected limits below -1 to be rejected")
	}
}
