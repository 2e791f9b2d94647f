// 配置加载器与默认配置测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- 默认配置测试 ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Greater(t, cfg.Server.WriteTimeout, cfg.Figurine.Timeout)
	assert.Equal(t, "figurebot", cfg.Server.MetricsNamespace)

	assert.Equal(t, DefaultEndpoint, cfg.Figurine.Endpoint)
	assert.Equal(t, 10, cfg.Figurine.MaxConns)
	assert.Equal(t, 5*time.Minute, cfg.Figurine.Timeout)
	assert.Equal(t, TriggerModePattern, cfg.Figurine.TriggerMode)
	assert.Equal(t, "手办化", cfg.Figurine.Keyword)
	assert.Equal(t, "FIGUREBOT", cfg.Figurine.SettingsEnvPrefix)
	assert.Nil(t, cfg.Figurine.Settings)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Telemetry.Enabled)

	require.NoError(t, cfg.Validate())
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, DefaultKeyword, cfg.Figurine.Keyword)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  http_port: 8888
  read_timeout: 60s
  rate_limit_rps: 2.5

figurine:
  endpoint: "https://images.example.com/API/Gemini.php"
  trigger_mode: command
  command: gen
  max_conns: 4
  settings:
    apikey: "sk-live-123"
    width: 768
    height: "512"

log:
  level: "debug"
  format: "console"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)

	assert.Equal(t, "https://images.example.com/API/Gemini.php", cfg.Figurine.Endpoint)
	assert.Equal(t, TriggerModeCommand, cfg.Figurine.TriggerMode)
	assert.Equal(t, "gen", cfg.Figurine.Command)
	assert.Equal(t, 4, cfg.Figurine.MaxConns)
	assert.Equal(t, "sk-live-123", cfg.Figurine.Settings["apikey"])
	assert.Equal(t, 768, cfg.Figurine.Settings["width"])
	assert.Equal(t, "512", cfg.Figurine.Settings["height"])

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("FIGUREBOT_SERVER_HTTP_PORT", "7777")
	t.Setenv("FIGUREBOT_FIGURINE_TRIGGER_MODE", "command")
	t.Setenv("FIGUREBOT_FIGURINE_TIMEOUT", "90s")
	t.Setenv("FIGUREBOT_FIGURINE_DOTENV_FILES", ".env, .env.local")
	t.Setenv("FIGUREBOT_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.HTTPPort)
	assert.Equal(t, TriggerModeCommand, cfg.Figurine.TriggerMode)
	assert.Equal(t, 90*time.Second, cfg.Figurine.Timeout)
	assert.Equal(t, []string{".env", ".env.local"}, cfg.Figurine.DotEnvFiles)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  http_port: 8888
figurine:
  keyword: "yaml-keyword"
  command: "yaml-command"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	t.Setenv("FIGUREBOT_SERVER_HTTP_PORT", "9999")
	t.Setenv("FIGUREBOT_FIGURINE_KEYWORD", "env-keyword")

	cfg, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.HTTPPort)
	assert.Equal(t, "env-keyword", cfg.Figurine.Keyword)
	// YAML 值应该保留（没有被环境变量覆盖）
	assert.Equal(t, "yaml-command", cfg.Figurine.Command)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER_HTTP_PORT", "6666")
	t.Setenv("MYAPP_FIGURINE_COMMAND", "paint")

	cfg, err := NewLoader().
		WithEnvPrefix("MYAPP").
		Load()
	require.NoError(t, err)

	assert.Equal(t, 6666, cfg.Server.HTTPPort)
	assert.Equal(t, "paint", cfg.Figurine.Command)
}

func TestLoader_WithValidator(t *testing.T) {
	validator := func(cfg *Config) error {
		if cfg.Server.HTTPPort < 1024 {
			return assert.AnError
		}
		return nil
	}

	t.Setenv("FIGUREBOT_SERVER_HTTP_PORT", "80")

	_, err := NewLoader().
		WithValidator(validator).
		Load()
	assert.Error(t, err)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("FIGUREBOT_FIGURINE_MAX_CONNS", "ten")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIGUREBOT_FIGURINE_MAX_CONNS")
}

func TestLoader_NonExistentFile(t *testing.T) {
	cfg, err := NewLoader().
		WithConfigPath("/non/existent/path/config.yaml").
		Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoader_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
server:
  http_port: [invalid
  this is not valid yaml
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidYAML), 0644))

	_, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	assert.Error(t, err)
}

// --- Config 方法测试 ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:   "valid command mode",
			modify: func(c *Config) { c.Figurine.TriggerMode = TriggerModeCommand },
		},
		{
			name:    "invalid HTTP port (negative)",
			modify:  func(c *Config) { c.Server.HTTPPort = -1 },
			wantErr: "invalid HTTP port",
		},
		{
			name:    "invalid HTTP port (too large)",
			modify:  func(c *Config) { c.Server.HTTPPort = 70000 },
			wantErr: "invalid HTTP port",
		},
		{
			name:    "rate limit without burst",
			modify:  func(c *Config) { c.Server.RateLimitBurst = 0 },
			wantErr: "rate_limit_burst",
		},
		{
			name:    "unknown trigger mode",
			modify:  func(c *Config) { c.Figurine.TriggerMode = "keyword" },
			wantErr: "unknown trigger_mode",
		},
		{
			name:    "pattern mode without keyword",
			modify:  func(c *Config) { c.Figurine.Keyword = "" },
			wantErr: "keyword is required",
		},
		{
			name: "command mode with bare slash",
			modify: func(c *Config) {
				c.Figurine.TriggerMode = TriggerModeCommand
				c.Figurine.Command = "/"
			},
			wantErr: "command is required",
		},
		{
			name:    "missing endpoint",
			modify:  func(c *Config) { c.Figurine.Endpoint = "" },
			wantErr: "endpoint is required",
		},
		{
			name:    "zero pool size",
			modify:  func(c *Config) { c.Figurine.MaxConns = 0 },
			wantErr: "max_conns",
		},
		{
			name:    "tls cert without key",
			modify:  func(c *Config) { c.Server.TLSCertFile = "server.crt" },
			wantErr: "must be set together",
		},
		{
			name: "tls cert and key",
			modify: func(c *Config) {
				c.Server.TLSCertFile = "server.crt"
				c.Server.TLSKeyFile = "server.key"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// --- MustLoad 测试 ---

func TestMustLoad_Success(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  http_port: 8181\n"), 0644))

	cfg := MustLoad(configPath)
	assert.Equal(t, 8181, cfg.Server.HTTPPort)
}

func TestMustLoad_Panics(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [oops"), 0644))

	assert.Panics(t, func() { MustLoad(configPath) })
}
