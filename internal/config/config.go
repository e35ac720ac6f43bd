package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingCredential is returned by Validate when a hosted backend is
// selected without its API key.
var ErrMissingCredential = errors.New("API key not found")

const (
	BackendGroq   = "groq"
	BackendClaude = "claude"
	BackendOllama = "ollama"
)

type Config struct {
	ListenAddr        string
	VisionBackend     string
	ChefBackend       string
	GroqAPIKey        string
	GroqBaseURL       string
	VisionModel       string
	ChefModel         string
	ClaudeAPIKey      string
	ClaudeModel       string
	OllamaHost        string
	OllamaVisionModel string
	OllamaChefModel   string
	ChefAgentFile     string
	MaxImageDimension uint
	LogLevel          string
	LogFormat         string
	LogFile           string
}

// Load reads configuration from the process environment, falling back to the
// key/value pairs in envFile. A missing envFile is not an error; values set
// in the real environment always win over the file.
func Load(envFile string) (*Config, error) {
	fileVals := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVals = vals
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	getEnv := func(key, defaultVal string) string {
		if val, exists := os.LookupEnv(key); exists {
			return val
		}
		if val, exists := fileVals[key]; exists {
			return val
		}
		return defaultVal
	}

	cfg := &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		VisionBackend:     getEnv("VISION_BACKEND", BackendGroq),
		ChefBackend:       getEnv("CHEF_BACKEND", BackendGroq),
		GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		VisionModel:       getEnv("VISION_MODEL", ""),
		ChefModel:         getEnv("CHEF_MODEL", ""),
		ClaudeAPIKey:      getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:       getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaVisionModel: getEnv("OLLAMA_VISION_MODEL", "llava"),
		OllamaChefModel:   getEnv("OLLAMA_CHEF_MODEL", "llama3.1"),
		ChefAgentFile:     getEnv("CHEF_AGENT_FILE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		LogFile:           getEnv("LOG_FILE", ""),
	}

	maxDim, err := strconv.ParseUint(getEnv("MAX_IMAGE_DIMENSION", "0"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_IMAGE_DIMENSION: %w", err)
	}
	cfg.MaxImageDimension = uint(maxDim)

	return cfg, nil
}

// Validate checks that every selected backend is known and that hosted
// backends have a credential. It performs no network access.
func (c *Config) Validate() error {
	for _, backend := range []string{c.VisionBackend, c.ChefBackend} {
		switch backend {
		case BackendGroq:
			if c.GroqAPIKey == "" {
				return fmt.Errorf("GROQ_API_KEY: %w", ErrMissingCredential)
			}
		case BackendClaude:
			if c.ClaudeAPIKey == "" {
				return fmt.Errorf("CLAUDE_API_KEY: %w", ErrMissingCredential)
			}
		case BackendOllama:
		default:
			return fmt.Errorf("unknown backend %q", backend)
		}
	}
	return nil
}
