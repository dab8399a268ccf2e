package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     Log     `yaml:"log"`
	Server  Server  `yaml:"server"`
	LLM     LLM     `yaml:"llm"`
	Chat    Chat    `yaml:"chat"`
	Safety  Safety  `yaml:"safety"`
	Terms   Terms   `yaml:"terms"`
	History History `yaml:"history"`
	Memory  Memory  `yaml:"memory"`
	Audit   Audit   `yaml:"audit"`
}

type LLM struct {
	// Provider selects the chat completion backend
	Provider string      `yaml:"provider" example:"openai" validate:"required,oneof=openai ollama"`
	OpenAI   ModelConfig `yaml:"openai"`
	Ollama   Ollama      `yaml:"ollama"`
}

type ModelConfig struct {
	// OpenAI base url
	BaseURL string `yaml:"base_url" example:"https://api.openai.com/v1"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// OpenAI model
	Model string `yaml:"model" example:"gpt-4o-mini"`
}

type Ollama struct {
	// Ollama server url
	BaseURL string `yaml:"base_url" example:"http://localhost:11434"`
	// Ollama model
	Model string `yaml:"model" example:"llama3.1"`
}

type Server struct {
	// HTTP listen address
	Listen string `yaml:"listen" example:":8080"`
}

type Chat struct {
	// Maximum accepted message length in bytes
	MaxMessageLength int `yaml:"max_message_length" example:"4000"`
	// Number of prior turns given to the model
	HistoryLimit int `yaml:"history_limit" example:"10"`
	// Timeout for a single completion call, in seconds
	LLMTimeoutSeconds int `yaml:"llm_timeout_seconds" example:"30"`
	// Disable turn and fact persistence entirely
	DisablePersistence bool `yaml:"disable_persistence" example:"false"`
}

type Safety struct {
	// Disclaimer appended to responses that lack one
	Disclaimer string `yaml:"disclaimer"`
	// Regexps that cause a generated response to be rejected
	DisallowedPatterns []string `yaml:"disallowed_patterns"`
}

type Terms struct {
	// Pattern table, category name to regexp; empty means built-in defaults
	Patterns map[string]string `yaml:"patterns"`
}

type History struct {
	// SQLite database path for conversation turns
	Path string `yaml:"path" example:"data/history.db"`
}

type Memory struct {
	// JSONL file path for patient facts
	Path string `yaml:"path" example:"data/memory.jsonl"`
}

type Audit struct {
	// JSONL file path for decision records
	Path string `yaml:"path" example:"data/audit.jsonl"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	result.ApplyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

// ApplyDefaults fills in everything that is optional in config.yaml.
func (c *Config) ApplyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.LLM.OpenAI.BaseURL == "" {
		c.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.Ollama.BaseURL == "" {
		c.LLM.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Chat.MaxMessageLength == 0 {
		c.Chat.MaxMessageLength = 4000
	}
	if c.Chat.HistoryLimit == 0 {
		c.Chat.HistoryLimit = 10
	}
	if c.Chat.LLMTimeoutSeconds == 0 {
		c.Chat.LLMTimeoutSeconds = 30
	}
	if c.History.Path == "" {
		c.History.Path = "data/history.db"
	}
	if c.Memory.Path == "" {
		c.Memory.Path = "data/memory.jsonl"
	}
	if c.Audit.Path == "" {
		c.Audit.Path = "data/audit.jsonl"
	}
}
