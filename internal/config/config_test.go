package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
base_url: https://notes.example.com
timeout: 90s
log_level: debug
history_db: /tmp/notesai-history.db
stream:
  read_size: 512
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(body); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()
	return tmp.Name()
}

// TestLoad_File verifies that Load reads the file named by CONFIG_PATH.
func TestLoad_File(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://notes.example.com", cfg.BaseURL)
	require.Equal(t, 90*time.Second, cfg.Timeout)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "/tmp/notesai-history.db", cfg.HistoryDB)
	require.Equal(t, 512, cfg.Stream.ReadSize)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultReadSize, cfg.Stream.ReadSize)
	require.Empty(t, cfg.HistoryDB)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv("NOTESAI_BASE_URL", "http://127.0.0.1:9999")
	t.Setenv("NOTESAI_STREAM_READ_SIZE", "16")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9999", cfg.BaseURL)
	require.Equal(t, 16, cfg.Stream.ReadSize)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())
	t.Setenv("NOTESAI_BASE_URL", "http://from-env:8080")

	v := viper.New()
	v.Set("base_url", "http://from-flag:8080")

	cfg, err := LoadFrom(v, "")
	require.NoError(t, err)
	require.Equal(t, "http://from-flag:8080", cfg.BaseURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(viper.New(), "/definitely/not/here.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no scheme", cfg: Config{BaseURL: "localhost:8080", Timeout: time.Second, Stream: StreamConfig{ReadSize: 1}}},
		{name: "zero timeout", cfg: Config{BaseURL: DefaultBaseURL, Stream: StreamConfig{ReadSize: 1}}},
		{name: "zero read size", cfg: Config{BaseURL: DefaultBaseURL, Timeout: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.cfg.Validate())
		})
	}
}

func TestClientConfig(t *testing.T) {
	cfg := Config{BaseURL: DefaultBaseURL, Timeout: 5 * time.Second, Stream: StreamConfig{ReadSize: 64}}
	cc := cfg.Client()
	require.Equal(t, DefaultBaseURL, cc.BaseURL)
	require.Equal(t, 5*time.Second, cc.Timeout)
	require.Equal(t, 64, cc.StreamReadSize)
}
