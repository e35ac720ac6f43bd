package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fridgechef/internal/llm"
)

// recordingModel captures the last request and returns a canned answer.
type recordingModel struct {
	last *llm.Request
	out  string
	err  error
}

func (m *recordingModel) Complete(_ context.Context, req *llm.Request) (string, error) {
	m.last = req
	return m.out, m.err
}

func TestExtractSendsFixedRequest(t *testing.T) {
	model := &recordingModel{out: "eggs, milk, cheese"}
	ex := NewExtractor(model, "")

	out, err := ex.Extract(context.Background(), "QUJD")

	require.NoError(t, err)
	assert.Equal(t, "eggs, milk, cheese", out)
	require.NotNil(t, model.last)
	assert.Equal(t, DefaultModel, model.last.Model)
	assert.Equal(t, IngredientPrompt, model.last.Prompt)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", model.last.ImageDataURI)
	require.NotNil(t, model.last.Temperature)
	assert.InDelta(t, 0.1, *model.last.Temperature, 1e-9)
	assert.Equal(t, 1024, model.last.MaxTokens)
	assert.Empty(t, model.last.System)
}

func TestExtractReturnsOutputVerbatim(t *testing.T) {
	prose := "  Here is what I see:\n- eggs\n- a carton of milk  "
	ex := NewExtractor(&recordingModel{out: prose}, "custom-model")

	out, err := ex.Extract(context.Background(), "QUJD")

	require.NoError(t, err)
	assert.Equal(t, prose, out)
}

func TestExtractUsesConfiguredModel(t *testing.T) {
	model := &recordingModel{out: "x"}
	_, err := NewExtractor(model, "llava").Extract(context.Background(), "QUJD")

	require.NoError(t, err)
	assert.Equal(t, "llava", model.last.Model)
}

func TestExtractError(t *testing.T) {
	want := errors.New("invalid api key")
	_, err := NewExtractor(&recordingModel{err: want}, "").Extract(context.Background(), "QUJD")

	assert.ErrorIs(t, err, want)
}
