package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("stt.api_key", "OPENAI_API_KEY", "APP_STT_API_KEY")
	viper.BindEnv("llm.api_key", "GEMINI_API_KEY", "APP_LLM_API_KEY")
	viper.BindEnv("tts.api_key", "ELEVENLABS_API_KEY", "APP_TTS_API_KEY")
	viper.BindEnv("tts.voice_id", "ELEVENLABS_VOICE_ID", "APP_TTS_VOICE_ID")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file is fine, env vars carry the required values
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "voxline")
	viper.SetDefault("app.version", "v1.0.0")
	viper.SetDefault("app.environment", "development")

	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.body_limit", 10*1024*1024)
	viper.SetDefault("http.read_timeout", "30s")
	viper.SetDefault("http.write_timeout", "120s")
	viper.SetDefault("http.idle_timeout", "60s")

	viper.SetDefault("cors.mode", CORSModeWildcard)
	viper.SetDefault("cors.max_age", 86400)

	viper.SetDefault("pipeline.min_audio_bytes", 1024)
	viper.SetDefault("pipeline.structured_failure_policy", "fallback")

	viper.SetDefault("stt.model", "whisper-1")
	viper.SetDefault("stt.base_url", "https://api.openai.com/v1")
	viper.SetDefault("stt.timeout", "60s")

	viper.SetDefault("llm.model", "gemini-2.0-flash")
	viper.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("llm.max_output_tokens", 256)
	viper.SetDefault("llm.temperature", 0.9)
	viper.SetDefault("llm.timeout", "60s")

	viper.SetDefault("tts.model_id", "eleven_multilingual_v2")
	viper.SetDefault("tts.base_url", "https://api.elevenlabs.io")
	viper.SetDefault("tts.output_format", "mp3_44100_128")
	viper.SetDefault("tts.stability", 0.5)
	viper.SetDefault("tts.similarity", 0.75)
	viper.SetDefault("tts.timeout", "120s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("prometheus.enabled", true)
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.jaeger_endpoint", "http://jaeger:14268/api/traces")
}
