package config

import "time"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	STT        STTConfig        `mapstructure:"stt"`
	LLM        LLMConfig        `mapstructure:"llm"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	BodyLimit    int           `mapstructure:"body_limit"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CORS modes. Wildcard allows every origin; allowlist echoes listed origins
// back verbatim and hands everyone else the configured default (usually
// nothing).
const (
	CORSModeWildcard  = "wildcard"
	CORSModeAllowlist = "allowlist"
)

type CORSConfig struct {
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	DefaultOrigin  string   `mapstructure:"default_origin"`
	MaxAge         int      `mapstructure:"max_age"`
}

type PipelineConfig struct {
	// MinAudioBytes rejects near-empty recordings before any upstream call.
	// Zero disables the guard.
	MinAudioBytes int `mapstructure:"min_audio_bytes"`

	// StructuredFailurePolicy decides what happens when the structured
	// generation contract returns unparseable output: "fallback" degrades to
	// the apology reply like any other generation failure, "abort" fails the
	// turn. Default is "fallback".
	StructuredFailurePolicy string `mapstructure:"structured_failure_policy"`
}

type STTConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LLMConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	BaseURL           string        `mapstructure:"base_url"`
	SystemInstruction string        `mapstructure:"system_instruction"`
	Structured        bool          `mapstructure:"structured"`
	MaxOutputTokens   int           `mapstructure:"max_output_tokens"`
	Temperature       float64       `mapstructure:"temperature"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type TTSConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	VoiceID      string        `mapstructure:"voice_id"`
	ModelID      string        `mapstructure:"model_id"`
	BaseURL      string        `mapstructure:"base_url"`
	OutputFormat string        `mapstructure:"output_format"`
	Stability    float64       `mapstructure:"stability"`
	Similarity   float64       `mapstructure:"similarity"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}
