package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vbonduro/fridgechef/internal/chef"
	"github.com/vbonduro/fridgechef/internal/vision"
)

// imageEncoder is the subset of photo.Encoder that ChefService requires.
type imageEncoder interface {
	Encode(data []byte) (string, error)
}

// ingredientExtractor is the subset of vision.Extractor that ChefService requires.
type ingredientExtractor interface {
	Extract(ctx context.Context, encodedImage string) (string, error)
}

// recipeGenerator is the subset of chef.Chef that ChefService requires.
type recipeGenerator interface {
	Generate(ctx context.Context, ingredients string) (*chef.Response, error)
}

// Stage names the step of a run that failed.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageGenerate Stage = "generate"
)

// Label is the user-facing name of the stage's failure domain.
func (s Stage) Label() string {
	if s == StageGenerate {
		return "Chef Error"
	}
	return "Vision Error"
}

// StageError reports which step of a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage.Label(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result is everything one run produced. Ingredients is kept even when
// recipe generation fails.
type Result struct {
	RunID       string
	Ingredients string
	// FormatNote is set when Ingredients does not look like the
	// comma-separated list the extractor asked for.
	FormatNote bool
	Recipes    string
	Chef       string
}

type EventType string

const (
	EventStatus      EventType = "status"
	EventIngredients EventType = "ingredients"
	EventRecipes     EventType = "recipes"
	EventError       EventType = "error"
)

// Event is one step of a streamed run.
type Event struct {
	Type        EventType
	Stage       Stage
	Ingredients string
	FormatNote  bool
	Recipes     string
	Err         error
}

type ChefService struct {
	encoder   imageEncoder
	extractor ingredientExtractor
	chef      recipeGenerator
	logger    *slog.Logger
}

func NewChefService(
	encoder imageEncoder,
	extractor ingredientExtractor,
	chef recipeGenerator,
	logger *slog.Logger,
) *ChefService {
	return &ChefService{
		encoder:   encoder,
		extractor: extractor,
		chef:      chef,
		logger:    logger,
	}
}

// Cook runs encode, extract and generate in order. An extraction failure
// returns a nil Result and a *StageError; the generator is never called. A
// generation failure returns the Result with Ingredients set alongside a
// *StageError.
func (s *ChefService) Cook(ctx context.Context, imageData []byte) (*Result, error) {
	return s.run(ctx, imageData, func(Event) {})
}

// CookStream runs the same chain as Cook and reports each step on the
// returned channel, which is closed after the last event.
func (s *ChefService) CookStream(ctx context.Context, imageData []byte) <-chan Event {
	// A run emits at most five events, so the goroutine never blocks even if
	// the reader stops early.
	out := make(chan Event, 8)
	go func() {
		defer close(out)
		_, _ = s.run(ctx, imageData, func(ev Event) { out <- ev })
	}()
	return out
}

func (s *ChefService) run(ctx context.Context, imageData []byte, emit func(Event)) (*Result, error) {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)
	logger.Info("cook started", "bytes", len(imageData))

	fail := func(stage Stage, err error) *StageError {
		stageErr := &StageError{Stage: stage, Err: err}
		logger.Error("cook failed", "stage", stage, "error", err)
		emit(Event{Type: EventError, Stage: stage, Err: stageErr})
		return stageErr
	}

	emit(Event{Type: EventStatus, Stage: StageExtract})

	encoded, err := s.encoder.Encode(imageData)
	if err != nil {
		return nil, fail(StageExtract, err)
	}
	logger.Debug("image encoded", "encoded_bytes", len(encoded))

	ingredients, err := s.extractor.Extract(ctx, encoded)
	if err != nil {
		return nil, fail(StageExtract, err)
	}

	report := vision.CheckFormat(ingredients)
	if !report.CommaSeparated {
		logger.Warn("ingredient list is not comma-separated; passing it through unchanged")
	}
	logger.Info("ingredients identified", "entries", len(report.Entries))

	result := &Result{
		RunID:       runID,
		Ingredients: ingredients,
		FormatNote:  !report.CommaSeparated,
	}
	emit(Event{Type: EventIngredients, Stage: StageExtract, Ingredients: ingredients, FormatNote: result.FormatNote})

	emit(Event{Type: EventStatus, Stage: StageGenerate})

	resp, err := s.chef.Generate(ctx, ingredients)
	if err != nil {
		return result, fail(StageGenerate, err)
	}

	if urls := chef.FindURLs(resp.Content); len(urls) > 0 {
		logger.Warn("recipes contain URLs", "count", len(urls))
	}

	result.Recipes = resp.Content
	result.Chef = resp.Agent
	emit(Event{Type: EventRecipes, Stage: StageGenerate, Recipes: resp.Content})

	logger.Info("cook complete", "recipe_bytes", len(resp.Content))
	return result, nil
}
