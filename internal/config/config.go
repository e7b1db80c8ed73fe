package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned by Validate when a required credential is not set.
var ErrMissingAPIKey = errors.New("api key not found")

// placeholderAPIKey is the value shipped in example .env files.
const placeholderAPIKey = "YOUR_FALLBACK_OPENAI_KEY_IF_NOT_IN_ENV"

// PathsConfig locates the pre-built artefacts on disk.
type PathsConfig struct {
	IndexDir string `yaml:"index_dir" validate:"required"`
	Docstore string `yaml:"docstore" validate:"required"`
}

// EmbedderConfig configures the OpenAI-compatible query embedder.
type EmbedderConfig struct {
	Type        string `yaml:"type" validate:"oneof=openai"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env" validate:"required"`
	Model       string `yaml:"model" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// LLMConfig selects and configures the chat model provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider" validate:"oneof=openai claude gemini"`
	Model       string  `yaml:"model" validate:"required"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env" validate:"required"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	TimeoutSecs int     `yaml:"timeout_secs" validate:"gte=0"`
}

// QdrantConfig contains connection details for a Qdrant collection.
type QdrantConfig struct {
	URL         string `yaml:"url" validate:"required,url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// MilvusConfig contains connection details for a Milvus collection.
type MilvusConfig struct {
	Address     string `yaml:"address" validate:"required"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	Collection  string `yaml:"collection" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrieverConfig configures the multi-vector retriever and its index backend.
type RetrieverConfig struct {
	K       int           `yaml:"k" validate:"gt=0"`
	IDKey   string        `yaml:"id_key" validate:"required"`
	Backend string        `yaml:"backend" validate:"oneof=local qdrant milvus"`
	Qdrant  *QdrantConfig `yaml:"qdrant,omitempty" validate:"required_if=Backend qdrant"`
	Milvus  *MilvusConfig `yaml:"milvus,omitempty" validate:"required_if=Backend milvus"`
}

// PromptConfig selects the instruction template.
type PromptConfig struct {
	Template string `yaml:"template" validate:"oneof=default reasoning"`
}

// LoggingConfig configures the arbor logger.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string  `yaml:"addr" validate:"required"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" validate:"gte=0"`
	RateBurst    int     `yaml:"rate_burst" validate:"gte=0"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Paths     PathsConfig     `yaml:"paths"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	LLM       LLMConfig       `yaml:"llm"`
	Retriever RetrieverConfig `yaml:"retriever"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/pdfchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/pdfchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// LoadFrom loads path when set and falls back to LoadDefault otherwise.
func LoadFrom(path string) (*AppConfig, error) {
	if path == "" {
		cfg, _, err := LoadDefault()
		return cfg, err
	}
	return Load(path)
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks field constraints, the presence of credentials and the
// on-disk artefacts. It never touches the artefacts beyond a stat.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := requireAPIKey(c.LLM.APIKeyEnv); err != nil {
		return err
	}
	if c.Embedder.APIKeyEnv != c.LLM.APIKeyEnv {
		if err := requireAPIKey(c.Embedder.APIKeyEnv); err != nil {
			return err
		}
	}
	if c.Retriever.Backend == "local" {
		if _, err := os.Stat(c.Paths.IndexDir); err != nil {
			return fmt.Errorf("vector index not found at %s: %w", c.Paths.IndexDir, err)
		}
	}
	if _, err := os.Stat(c.Paths.Docstore); err != nil {
		return fmt.Errorf("document store not found at %s: %w", c.Paths.Docstore, err)
	}
	return nil
}

func requireAPIKey(env string) error {
	key := os.Getenv(env)
	if key == "" || key == placeholderAPIKey {
		return fmt.Errorf("%w: set %s in the .env file or the environment", ErrMissingAPIKey, env)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pdfchat", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Paths: PathsConfig{IndexDir: "vectorstore/index", Docstore: "vectorstore/docstore.json"},
		Embedder: EmbedderConfig{
			Type:        "openai",
			BaseURL:     "https://api.openai.com/v1",
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "text-embedding-3-small",
			TimeoutSecs: 30,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0,
			MaxTokens:   4096,
			TimeoutSecs: 120,
		},
		Retriever: RetrieverConfig{K: 10, IDKey: "doc_id", Backend: "local"},
		Prompt:    PromptConfig{Template: "default"},
		Logging:   LoggingConfig{Level: "info"},
		Server:    ServerConfig{Addr: ":8080", RateLimitRPS: 2, RateBurst: 4},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Retriever.K == 0 {
		cfg.Retriever.K = 10
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 120
	}
	switch cfg.LLM.Provider {
	case "claude":
		if cfg.LLM.APIKeyEnv == "" || cfg.LLM.APIKeyEnv == "OPENAI_API_KEY" {
			cfg.LLM.APIKeyEnv = "ANTHROPIC_API_KEY"
		}
		if cfg.LLM.Model == "" || cfg.LLM.Model == "gpt-4o-mini" {
			cfg.LLM.Model = "claude-sonnet-4-20250514"
		}
	case "gemini":
		if cfg.LLM.APIKeyEnv == "" || cfg.LLM.APIKeyEnv == "OPENAI_API_KEY" {
			cfg.LLM.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.LLM.Model == "" || cfg.LLM.Model == "gpt-4o-mini" {
			cfg.LLM.Model = "gemini-2.5-flash"
		}
	}
	if cfg.Retriever.Qdrant != nil && cfg.Retriever.Qdrant.TimeoutSecs == 0 {
		cfg.Retriever.Qdrant.TimeoutSecs = 15
	}
	if cfg.Retriever.Milvus != nil && cfg.Retriever.Milvus.TimeoutSecs == 0 {
		cfg.Retriever.Milvus.TimeoutSecs = 15
	}
}
