package main

import (
	"log"
	"log/slog"

	"github.com/vbonduro/fridgechef/internal/chef"
	"github.com/vbonduro/fridgechef/internal/config"
	"github.com/vbonduro/fridgechef/internal/llm"
	"github.com/vbonduro/fridgechef/internal/llm/claude"
	"github.com/vbonduro/fridgechef/internal/llm/groq"
	"github.com/vbonduro/fridgechef/internal/llm/ollama"
	"github.com/vbonduro/fridgechef/internal/logging"
	"github.com/vbonduro/fridgechef/internal/photo"
	"github.com/vbonduro/fridgechef/internal/service"
	"github.com/vbonduro/fridgechef/internal/vision"
	"github.com/vbonduro/fridgechef/internal/web"
	"github.com/vbonduro/fridgechef/internal/web/templates"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	// A bad configuration still serves the page so the user sees what is wrong.
	setupErr := cfg.Validate()
	if setupErr != nil {
		logger.Error("configuration invalid", "error", setupErr)
	}

	agent := chef.DefaultAgent()
	if cfg.ChefAgentFile != "" {
		agent, err = chef.LoadAgent(cfg.ChefAgentFile)
		if err != nil {
			logger.Error("failed to load chef agent", "path", cfg.ChefAgentFile, "error", err)
			return
		}
	}
	agent.Model = chefModelName(cfg, agent.Model)

	extractor := vision.NewExtractor(
		newModel(cfg, cfg.VisionBackend, logger),
		visionModelName(cfg),
	)
	cook := chef.New(agent, newModel(cfg, cfg.ChefBackend, logger))
	logger.Info("chef ready",
		"agent", agent.Name,
		"vision_backend", cfg.VisionBackend,
		"chef_backend", cfg.ChefBackend,
		"chef_model", agent.Model,
	)

	svc := service.NewChefService(photo.NewEncoder(cfg.MaxImageDimension), extractor, cook, logger)
	server := web.NewServer(svc, setupErr, templates.FS, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

// newModel builds the client for backend. An unknown backend falls back to
// groq; Validate has already reported it and the server will not call it.
func newModel(cfg *config.Config, backend string, logger *slog.Logger) llm.Model {
	var m llm.Model
	switch backend {
	case config.BackendClaude:
		m = claude.NewClient(cfg.ClaudeAPIKey, "")
	case config.BackendOllama:
		m = ollama.NewClient(cfg.OllamaHost)
	default:
		m = groq.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL)
	}
	return llm.WithLogging(m, backend, logger)
}

// visionModelName resolves the extraction model. VISION_MODEL wins on every
// backend; otherwise each backend uses its own default.
func visionModelName(cfg *config.Config) string {
	if cfg.VisionModel != "" {
		return cfg.VisionModel
	}
	switch cfg.VisionBackend {
	case config.BackendClaude:
		return cfg.ClaudeModel
	case config.BackendOllama:
		return cfg.OllamaVisionModel
	default:
		return vision.DefaultModel
	}
}

// chefModelName resolves the recipe model. CHEF_MODEL wins; otherwise the
// agent's model is kept unless it is the groq default on a non-groq backend.
func chefModelName(cfg *config.Config, agentModel string) string {
	if cfg.ChefModel != "" {
		return cfg.ChefModel
	}
	if agentModel != "" && (cfg.ChefBackend == config.BackendGroq || agentModel != chef.DefaultModel) {
		return agentModel
	}
	switch cfg.ChefBackend {
	case config.BackendClaude:
		return cfg.ClaudeModel
	case config.BackendOllama:
		return cfg.OllamaChefModel
	default:
		return chef.DefaultModel
	}
}
