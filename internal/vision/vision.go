package vision

import (
	"context"
	"fmt"

	"github.com/vbonduro/fridgechef/internal/llm"
	"github.com/vbonduro/fridgechef/internal/photo"
)

// IngredientPrompt is the fixed instruction sent with every photo.
const IngredientPrompt = "Identify the edible ingredients in this image. " +
	"Return ONLY a comma-separated list of items. " +
	"Do not include containers or shelves."

const (
	DefaultModel = "meta-llama/llama-4-scout-17b-16e-instruct"
	// Temperature is kept low so repeated runs on the same photo agree.
	Temperature = 0.1
	MaxTokens   = 1024
)

// Extractor asks a vision-capable model which ingredients a photo shows.
type Extractor struct {
	model     llm.Model
	modelName string
}

func NewExtractor(model llm.Model, modelName string) *Extractor {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Extractor{model: model, modelName: modelName}
}

// Extract sends the base64 JPEG image and returns the model's text verbatim.
// The text is not checked against the requested comma-separated shape.
func (e *Extractor) Extract(ctx context.Context, encodedImage string) (string, error) {
	out, err := e.model.Complete(ctx, &llm.Request{
		Model:        e.modelName,
		Prompt:       IngredientPrompt,
		ImageDataURI: photo.DataURI(encodedImage),
		Temperature:  llm.Temperature(Temperature),
		MaxTokens:    MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to extract ingredients: %w", err)
	}
	return out, nil
}
