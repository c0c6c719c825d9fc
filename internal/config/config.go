package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read once at startup and passed by reference into every
// adapter constructor. Nothing reads the environment after MustLoad.
type Config struct {
	Port string `env:"PORT" env-default:"8080"`

	GroqAPIKey  string `env:"GROQ_API_KEY"`
	GroqBaseURL string `env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai/v1"`

	STTModel      string `env:"STT_MODEL" env-default:"whisper-large-v3"`
	VisionModel   string `env:"VISION_MODEL" env-default:"meta-llama/llama-4-scout-17b-16e-instruct"`
	FallbackModel string `env:"FALLBACK_MODEL" env-default:"llama-3.1-8b-instant"`

	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `env:"ELEVENLABS_VOICE_ID" env-default:"EXAVITQu4vr4xnSDxMaL"`

	AudioDir string `env:"AUDIO_DIR" env-default:"static/audio"`

	STTTimeout time.Duration `env:"STT_TIMEOUT" env-default:"60s"`
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" env-default:"120s"`
	TTSTimeout time.Duration `env:"TTS_TIMEOUT" env-default:"60s"`

	// S3 is optional: when S3_ENDPOINT is set, synthesized audio goes to
	// the bucket instead of the local AudioDir.
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`

	// Telegram is optional: the bot starts only when a token is present.
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read environment variables: " + err.Error())
	}

	return &cfg
}

func (c *Config) GroqConfigured() bool {
	return c.GroqAPIKey != ""
}

func (c *Config) ElevenLabsConfigured() bool {
	return c.ElevenLabsAPIKey != ""
}

func (c *Config) S3Configured() bool {
	return c.S3Endpoint != ""
}

func (c *Config) TelegramConfigured() bool {
	return c.TelegramToken != ""
}
