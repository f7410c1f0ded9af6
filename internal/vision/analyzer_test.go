package vision

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartoon-story-bot/internal/provider"
)

func dragon() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 64, 48))
}

func TestNewRequiresTextGenerator(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	var got provider.TextRequest
	a, err := New(Options{Text: &mockText{completeFunc: func(ctx context.Context, req provider.TextRequest) (string, error) {
		got = req
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return "A small blue dragon in a meadow.", nil
	}}})
	require.NoError(t, err)

	out, err := a.Analyze(context.Background(), dragon())
	require.NoError(t, err)
	assert.Equal(t, "A small blue dragon in a meadow.", out)

	assert.Equal(t, 800, got.MaxTokens)
	assert.False(t, got.JSON)
	assert.Contains(t, got.Prompt, "6. Key visual elements")
	require.Len(t, got.ImageDataURLs, 1)
	assert.True(t, strings.HasPrefix(got.ImageDataURLs[0], "data:image/jpeg;base64,"))
}

func TestExtractFeatures(t *testing.T) {
	var got provider.TextRequest
	a, err := New(Options{Text: &mockText{completeFunc: func(ctx context.Context, req provider.TextRequest) (string, error) {
		got = req
		return "cel shaded, teal palette", nil
	}}})
	require.NoError(t, err)

	out, err := a.ExtractFeatures(context.Background(), dragon())
	require.NoError(t, err)
	assert.Equal(t, "cel shaded, teal palette", out)
	assert.Equal(t, 500, got.MaxTokens)
	assert.Contains(t, got.Prompt, "Color palette and lighting style")
}

func TestAnalyzeErrors(t *testing.T) {
	boom := errors.New("service unavailable")

	tests := []struct {
		name  string
		img   image.Image
		reply string
		err   error
		want  error
	}{
		{name: "service error", img: dragon(), err: boom, want: boom},
		{name: "empty reply", img: dragon(), want: provider.ErrEmptyResponse},
		{name: "unusable image", img: image.NewRGBA(image.Rect(0, 0, 0, 0)), reply: "never"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(Options{Text: &mockText{completeFunc: func(context.Context, provider.TextRequest) (string, error) {
				return tt.reply, tt.err
			}}})
			require.NoError(t, err)

			_, err = a.Analyze(context.Background(), tt.img)
			var ae *AnalysisError
			require.ErrorAs(t, err, &ae)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}

			_, err = a.ExtractFeatures(context.Background(), tt.img)
			var fe *FeatureExtractionError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestAnalyzeHonoursTimeout(t *testing.T) {
	a, err := New(Options{
		Timeout: 10 * time.Millisecond,
		Text: &mockText{completeFunc: func(ctx context.Context, req provider.TextRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}},
	})
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), dragon())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
