package llm

import (
	"context"
	"log/slog"
	"time"
)

type loggingModel struct {
	wrapped Model
	backend string
	logger  *slog.Logger
}

// WithLogging decorates m so every call logs its backend, model, size and
// duration. Prompt and response text are only logged at debug level.
func WithLogging(m Model, backend string, logger *slog.Logger) Model {
	return &loggingModel{wrapped: m, backend: backend, logger: logger}
}

func (l *loggingModel) Complete(ctx context.Context, req *Request) (string, error) {
	start := time.Now()
	l.logger.Debug("model request",
		"backend", l.backend,
		"model", req.Model,
		"prompt", req.Prompt,
		"image_bytes", len(req.ImageDataURI),
	)

	out, err := l.wrapped.Complete(ctx, req)
	if err != nil {
		l.logger.Error("model request failed",
			"backend", l.backend,
			"model", req.Model,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", err
	}

	l.logger.Info("model request complete",
		"backend", l.backend,
		"model", req.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_bytes", len(out),
	)
	l.logger.Debug("model response", "backend", l.backend, "response", out)
	return out, nil
}
