// Package vision turns a reference image into text: a full analysis that
// seeds the story and a shorter digest that keeps illustrations on model.
package vision

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"cartoon-story-bot/internal/imaging"
	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/provider"
)

type Options struct {
	Text    provider.TextGenerator
	Timeout time.Duration
	Logger  *slog.Logger
}

// Analyzer makes one uncached service call per method invocation.
type Analyzer struct {
	text    provider.TextGenerator
	timeout time.Duration
	logger  *slog.Logger
}

func New(opts Options) (*Analyzer, error) {
	if opts.Text == nil {
		return nil, errors.New("vision: text generator is nil")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Analyzer{
		text:    opts.Text,
		timeout: timeout,
		logger:  logging.WithComponent(opts.Logger, "vision"),
	}, nil
}

func (a *Analyzer) Analyze(ctx context.Context, img image.Image) (string, error) {
	out, err := a.describe(ctx, img, analysisPrompt, analysisMaxTokens)
	if err != nil {
		return "", &AnalysisError{Err: err}
	}
	return out, nil
}

func (a *Analyzer) ExtractFeatures(ctx context.Context, img image.Image) (string, error) {
	out, err := a.describe(ctx, img, featurePrompt, featureMaxTokens)
	if err != nil {
		return "", &FeatureExtractionError{Err: err}
	}
	return out, nil
}

func (a *Analyzer) describe(ctx context.Context, img image.Image, prompt string, maxTokens int) (string, error) {
	dataURL, err := imaging.ReferenceDataURL(img)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	out, err := a.text.Complete(ctx, provider.TextRequest{
		Prompt:        prompt,
		ImageDataURLs: []string{dataURL},
		MaxTokens:     maxTokens,
	})
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", provider.ErrEmptyResponse
	}

	a.logger.DebugContext(ctx, "image described", "max_tokens", maxTokens, "chars", len(out), "duration_ms", time.Since(start).Milliseconds())
	return out, nil
}
