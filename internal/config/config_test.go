package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.VisionBackend)
	assert.NotEmpty(t, cfg.OllamaVisionModel)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("VISION_BACKEND", "claude")
	t.Setenv("CLAUDE_API_KEY", "sk-test123")
	t.Setenv("MAX_IMAGE_DIMENSION", "1600")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "claude", cfg.VisionBackend)
	assert.Equal(t, "sk-test123", cfg.ClaudeAPIKey)
	assert.Equal(t, uint(1600), cfg.MaxImageDimension)
}

func TestLoadReadsEnvFile(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	os.Unsetenv("GROQ_API_KEY")
	path := writeEnvFile(t, "GROQ_API_KEY=gsk-from-file\nLOG_LEVEL=debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gsk-from-file", cfg.GroqAPIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-from-env")
	path := writeEnvFile(t, "GROQ_API_KEY=gsk-from-file\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gsk-from-env", cfg.GroqAPIKey)
}

func TestLoadMissingEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadInvalidMaxDimension(t *testing.T) {
	t.Setenv("MAX_IMAGE_DIMENSION", "huge")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		wantAny bool
	}{
		{
			name: "groq with key",
			cfg:  Config{VisionBackend: BackendGroq, ChefBackend: BackendGroq, GroqAPIKey: "gsk"},
		},
		{
			name:    "groq without key",
			cfg:     Config{VisionBackend: BackendGroq, ChefBackend: BackendGroq},
			wantErr: ErrMissingCredential,
		},
		{
			name:    "claude chef without key",
			cfg:     Config{VisionBackend: BackendGroq, ChefBackend: BackendClaude, GroqAPIKey: "gsk"},
			wantErr: ErrMissingCredential,
		},
		{
			name: "ollama needs no key",
			cfg:  Config{VisionBackend: BackendOllama, ChefBackend: BackendOllama},
		},
		{
			name:    "unknown backend",
			cfg:     Config{VisionBackend: "openai", ChefBackend: BackendOllama},
			wantAny: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAny:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
