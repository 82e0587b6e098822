package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
	if cfg.SessionCookie != "connect.sid" || cfg.CallbackPort != 8765 {
		t.Fatalf("cookie/port = %q/%d, want connect.sid/8765", cfg.SessionCookie, cfg.CallbackPort)
	}

	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.Log.File != filepath.Join(wantDataDir, logFileName) {
		t.Fatalf("Log.File = %q, want %q", cfg.Log.File, filepath.Join(wantDataDir, logFileName))
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  https://api.example.com  "
request_timeout = "5s"
callback_port = 9000
data_dir = "  ~/.companion  "

[log]
level = " DEBUG "
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://api.example.com" {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, "https://api.example.com")
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.CallbackPort != 9000 {
		t.Fatalf("CallbackPort = %d, want 9000", cfg.CallbackPort)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.PrefsPath() != filepath.Join(filepath.Dir(path), "prefs.toml") {
		t.Fatalf("PrefsPath = %q", cfg.PrefsPath())
	}
	if cfg.CallbackURL() != "http://127.0.0.1:9000/callback" {
		t.Fatalf("CallbackURL = %q", cfg.CallbackURL())
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COMPANION_API_URL", "http://env:1")
	t.Setenv("COMPANION_LOG_LEVEL", "warn")
	t.Setenv("COMPANION_REQUEST_TIMEOUT", "2s")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = "http://file:1"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://env:1" {
		t.Fatalf("APIURL = %q, want env value", cfg.APIURL)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("RequestTimeout = %v, want 2s", cfg.RequestTimeout)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `api_url = `},
		{name: "negative timeout", body: `request_timeout = "-1s"`},
		{name: "port out of range", body: `callback_port = 70000`},
		{name: "unknown level", body: "[log]\nlevel = \"loud\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("Load returned nil error for %s", tt.name)
			}
		})
	}
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("COMPANION_TEST_A=from-file\nCOMPANION_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("COMPANION_TEST_A", "from-env")
	t.Setenv("COMPANION_TEST_B", "")
	os.Unsetenv("COMPANION_TEST_B")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv returned error: %v", err)
	}
	if got := os.Getenv("COMPANION_TEST_A"); got != "from-env" {
		t.Fatalf("COMPANION_TEST_A = %q, want from-env", got)
	}
	if got := os.Getenv("COMPANION_TEST_B"); got != "from-file" {
		t.Fatalf("COMPANION_TEST_B = %q, want from-file", got)
	}
	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("loadDotEnv(missing) returned error: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/x")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("expandPath(~/x) = %q, want %q", got, filepath.Join(home, "x"))
	}
	if _, err := expandPath("  "); err == nil {
		t.Fatalf("expandPath(blank) returned nil error")
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := Default()
	if cfg.APIURL != defaultAPIURL || cfg.Log.File == "" {
		t.Fatalf("Default = %+v", cfg)
	}
}
