// =============================================================================
// 📦 figurebot 默认配置
// =============================================================================
package config

import "time"

// Trigger modes
const (
	TriggerModePattern = "pattern"
	TriggerModeCommand = "command"
)

// Defaults for the upstream image API and the plugin settings.
const (
	DefaultEndpoint       = "https://missqiu.icu/API/Gemini.php"
	DefaultKeyword        = "手办化"
	DefaultCommand        = "draw"
	DefaultDimension      = "1024"
	DefaultMaxConns       = 10
	DefaultSettingsPrefix = "FIGUREBOT"
	// 与原会话默认的 5 分钟总超时保持一致
	DefaultUpstreamTimeout = 5 * time.Minute
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Figurine:  DefaultFigurineConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:         8080,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     DefaultUpstreamTimeout + 30*time.Second,
		ShutdownTimeout:  15 * time.Second,
		RateLimitRPS:     5,
		RateLimitBurst:   10,
		MetricsNamespace: "figurebot",
	}
}

// DefaultFigurineConfig 返回默认插件部署配置
func DefaultFigurineConfig() FigurineConfig {
	return FigurineConfig{
		Endpoint:          DefaultEndpoint,
		MaxConns:          DefaultMaxConns,
		Timeout:           DefaultUpstreamTimeout,
		TriggerMode:       TriggerModePattern,
		Keyword:           DefaultKeyword,
		Command:           DefaultCommand,
		SettingsFile:      "figurine.json",
		SettingsEnvPrefix: DefaultSettingsPrefix,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "figurebot",
		SampleRate:   0.1,
	}
}

// DefaultSettings 返回插件运行参数的兜底值
func DefaultSettings() Settings {
	return Settings{
		APIKey: "",
		Width:  DefaultDimension,
		Height: DefaultDimension,
	}
}
