package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// isolateEnv points HOME and the working directory at an empty temp dir so
// no real .env file is picked up.
func isolateEnv(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return tmpDir
}

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_ENV_STRING", "test_value")

	if got := getEnvString("TEST_ENV_STRING", "default"); got != "test_value" {
		t.Errorf("getEnvString() = %q, want %q", got, "test_value")
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name   string
		envVal string
		want   int
	}{
		{"Valid", "7", 7},
		{"Spaces", " 4 ", 4},
		{"Invalid", "seven", 3},
		{"Empty", "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_INT", tt.envVal)
			if got := getEnvInt("TEST_ENV_INT", 3); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_ENV_LIST", " a, b ,,c ")
	if got := getEnvList("TEST_ENV_LIST", nil); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("getEnvList() = %v", got)
	}

	t.Setenv("TEST_ENV_LIST", " , ")
	if got := getEnvList("TEST_ENV_LIST", []string{"*"}); !reflect.DeepEqual(got, []string{"*"}) {
		t.Errorf("getEnvList() = %v, want default", got)
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Fatal("getEnvPaths() returned empty list")
	}

	cwd, _ := os.Getwd()
	if paths[0] != filepath.Join(cwd, ".env") {
		t.Errorf("first path = %q, want current directory .env", paths[0])
	}
}

func TestLoad(t *testing.T) {
	tmpDir := isolateEnv(t)
	t.Setenv("APS_CLIENT_ID", "test-id")
	t.Setenv("APS_CLIENT_SECRET", "test-secret")
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "db", "tokenflex.db"))
	t.Setenv("CREDENTIALS_PATH", filepath.Join(tmpDir, "creds", "credentials.json"))
	t.Setenv("TOKENFLEX_BASE_URL", "http://upstream.test/v1/")
	t.Setenv("POLL_MAX_ATTEMPTS", "20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ClientID != "test-id" {
		t.Errorf("ClientID = %q, want %q", cfg.ClientID, "test-id")
	}
	if cfg.BaseURL != "http://upstream.test/v1" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if cfg.RequestMaxAttempts != defaultRequestMaxAttempts {
		t.Errorf("RequestMaxAttempts = %d, want %d", cfg.RequestMaxAttempts, defaultRequestMaxAttempts)
	}
	if cfg.PollMaxAttempts != 20 {
		t.Errorf("PollMaxAttempts = %d, want 20", cfg.PollMaxAttempts)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, defaultPollInterval)
	}
	if cfg.HistoryRetention != defaultHistoryRetention {
		t.Errorf("HistoryRetention = %v, want %v", cfg.HistoryRetention, defaultHistoryRetention)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "db")); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "creds")); err != nil {
		t.Errorf("credentials directory not created: %v", err)
	}
}

func TestLoad_DatabaseDisabled(t *testing.T) {
	tmpDir := isolateEnv(t)
	t.Setenv("APS_CLIENT_ID", "id")
	t.Setenv("APS_CLIENT_SECRET", "secret")
	t.Setenv("CREDENTIALS_PATH", filepath.Join(tmpDir, "credentials.json"))
	t.Setenv("DATABASE_PATH", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DatabasePath != "" {
		t.Errorf("DatabasePath = %q, want empty", cfg.DatabasePath)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"MissingCredentials", map[string]string{"APS_CLIENT_ID": "", "APS_CLIENT_SECRET": ""}},
		{"ZeroAttempts", map[string]string{"REQUEST_MAX_ATTEMPTS": "0"}},
		{"NegativePollAttempts", map[string]string{"POLL_MAX_ATTEMPTS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := isolateEnv(t)
			t.Setenv("APS_CLIENT_ID", "id")
			t.Setenv("APS_CLIENT_SECRET", "secret")
			t.Setenv("DATABASE_PATH", "none")
			t.Setenv("CREDENTIALS_PATH", filepath.Join(tmpDir, "credentials.json"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := Load(); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	tmpDir := isolateEnv(t)
	content := "APS_CLIENT_ID=env-id\nAPS_CLIENT_SECRET=env-secret\nDATABASE_PATH=none\n" +
		"CREDENTIALS_PATH=" + filepath.Join(tmpDir, "credentials.json") + "\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// godotenv does not override, so make sure nothing leaks in
	for _, key := range []string{"APS_CLIENT_ID", "APS_CLIENT_SECRET", "DATABASE_PATH", "CREDENTIALS_PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.ClientID != "env-id" {
		t.Errorf("ClientID = %q, want env-id", cfg.ClientID)
	}
}

func TestLoadDashboard(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DASHBOARD_SERVER_URL", "http://example.test:9000/")

	cfg := LoadDashboard()
	if cfg.ServerURL != "http://example.test:9000" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.HTTPTimeout != 5*time.Minute {
		t.Errorf("HTTPTimeout = %v, want 5m", cfg.HTTPTimeout)
	}
	if !cfg.DesktopNotify {
		t.Error("DesktopNotify should default to true")
	}

	t.Setenv("DASHBOARD_NOTIFY", "false")
	if LoadDashboard().DesktopNotify {
		t.Error("DesktopNotify should be disabled by DASHBOARD_NOTIFY=false")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		envVal string
		want   bool
	}{
		{"", true},
		{"false", false},
		{"0", false},
		{"TRUE", true},
		{"garbage", true},
	}
	for _, tt := range tests {
		t.Run(tt.envVal, func(t *testing.T) {
			t.Setenv("TEST_ENV_BOOL", tt.envVal)
			if got := getEnvBool("TEST_ENV_BOOL", true); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.envVal, got, tt.want)
			}
		})
	}
}
