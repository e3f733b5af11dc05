package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Owner      OwnerConfig
	Storage    StorageConfig
	OpenAI     OpenAIConfig
	ElevenLabs ElevenLabsConfig
	DeepL      DeepLConfig
	Solapi     SolapiConfig
	Sens       SensConfig
	Inquiry    InquiryConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
}

// OwnerConfig identifies the primary subject of this deployment: the owner
// whose clone the chatbot is.
type OwnerConfig struct {
	ID             int64
	Phone          string
	Representative string // full name addressed as 대표님
}

type StorageConfig struct {
	DataDir string
}

type OpenAIConfig struct {
	APIKey    string
	ChatModel string
}

type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
}

type DeepLConfig struct {
	APIKey string
}

type SolapiConfig struct {
	APIKey             string
	APISecret          string
	PFID               string
	SenderNumber       string
	CustomerTemplateID string
	OwnerTemplateID    string
}

// SensConfig configures the Naver Cloud SENS SMS fallback, used for owner
// notifications when no KakaoTalk channel is set up.
type SensConfig struct {
	AccessKey string
	SecretKey string
	ServiceID string
}

type InquiryConfig struct {
	WebhookURL string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Owner: OwnerConfig{
			ID:             1,
			Representative: "정민기",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		OpenAI: OpenAIConfig{
			ChatModel: "gpt-4o-mini",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".inoclone")
}

// Load reads configuration from a .env file (if present) and environment
// variables. Only the OpenAI API key is required at startup; provider keys
// for optional endpoints (speech, translation, messaging) are validated at
// first use of the affected endpoint.
func Load() (Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := defaults()
	applyEnv(&cfg)

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key. Set it via environment variable OPENAI_API_KEY")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	envInt(&cfg.Server.Port, "INOCLONE_PORT")
	envInt64(&cfg.Owner.ID, "OWNER_ID")
	envStr(&cfg.Owner.Phone, "OWNER_PHONE_NUMBER")
	envStr(&cfg.Owner.Representative, "REPRESENTATIVE_NAME")
	envStr(&cfg.Storage.DataDir, "INOCLONE_DATA_DIR")
	envStr(&cfg.Log.Level, "INOCLONE_LOG_LEVEL")

	envStr(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	envStr(&cfg.OpenAI.ChatModel, "OPENAI_CHAT_MODEL")

	// Both spellings have been used in deployments; support either.
	envStr(&cfg.ElevenLabs.APIKey, "ELEVENLABS_API_KEY", "ELEVEN_LABS_API_KEY")
	envStr(&cfg.ElevenLabs.VoiceID, "ELEVENLABS_VOICE_ID", "ELEVEN_LABS_VOICE_ID")

	envStr(&cfg.DeepL.APIKey, "DEEPL_API_KEY")

	envStr(&cfg.Solapi.APIKey, "SOLAPI_API_KEY")
	envStr(&cfg.Solapi.APISecret, "SOLAPI_API_SECRET")
	envStr(&cfg.Solapi.PFID, "SOLAPI_PFID")
	envStr(&cfg.Solapi.SenderNumber, "SOLAPI_SENDER_NUMBER")
	envStr(&cfg.Solapi.CustomerTemplateID, "CUSTOMER_TEMPLATE_ID")
	envStr(&cfg.Solapi.OwnerTemplateID, "OWNER_TEMPLATE_ID")

	envStr(&cfg.Sens.AccessKey, "NCP_ACCESS_KEY")
	envStr(&cfg.Sens.SecretKey, "NCP_SECRET_KEY")
	envStr(&cfg.Sens.ServiceID, "SENS_SERVICE_ID")

	envStr(&cfg.Inquiry.WebhookURL, "MAKE_WEBHOOK_URL")
}

// envStr sets target from the first non-empty environment variable.
func envStr(target *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*target = v
			return
		}
	}
}

func envInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func envInt64(target *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = n
		}
	}
}
