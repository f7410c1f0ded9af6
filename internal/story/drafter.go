// Package story drafts multi-scene stories from an image analysis and
// validates the model's structured reply.
package story

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/provider"
)

type Request struct {
	Analysis     string
	NumScenes    int
	Genre        string
	Idea         string
	WordsPerPage int
}

func (r Request) validate() error {
	switch {
	case r.NumScenes <= 0:
		return fmt.Errorf("%w: scene count must be positive, got %d", ErrInvalidRequest, r.NumScenes)
	case r.WordsPerPage <= 0:
		return fmt.Errorf("%w: words per page must be positive, got %d", ErrInvalidRequest, r.WordsPerPage)
	case strings.TrimSpace(r.Analysis) == "":
		return fmt.Errorf("%w: image analysis is empty", ErrInvalidRequest)
	}
	return nil
}

type Options struct {
	Text    provider.TextGenerator
	Timeout time.Duration
	Logger  *slog.Logger
}

type Drafter struct {
	text    provider.TextGenerator
	timeout time.Duration
	logger  *slog.Logger
}

func New(opts Options) (*Drafter, error) {
	if opts.Text == nil {
		return nil, errors.New("story: text generator is nil")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Drafter{
		text:    opts.Text,
		timeout: timeout,
		logger:  logging.WithComponent(opts.Logger, "story"),
	}, nil
}

// Generate returns a Document with exactly req.NumScenes scenes or an
// error of type *GenerationError, *ParseError or *SchemaError.
func (d *Drafter) Generate(ctx context.Context, req Request) (Document, error) {
	if req.Genre == "" {
		req.Genre = "Adventure"
	}
	if err := req.validate(); err != nil {
		return Document{}, &GenerationError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	reply, err := d.text.Complete(ctx, provider.TextRequest{
		System:    storytellerPersona,
		Prompt:    buildStoryPrompt(req),
		MaxTokens: storyMaxTokens,
		JSON:      true,
	})
	if err != nil {
		return Document{}, &GenerationError{Err: err}
	}
	if strings.TrimSpace(reply) == "" {
		return Document{}, &GenerationError{Err: provider.ErrEmptyResponse}
	}

	doc, err := Validate([]byte(reply), req.NumScenes)
	if err != nil {
		d.logger.WarnContext(ctx, "story reply rejected", "err", err, "scenes", req.NumScenes)
		return Document{}, err
	}

	d.logger.InfoContext(ctx, "story drafted", "title", doc.Title, "scenes", len(doc.Scenes), "genre", req.Genre, "duration_ms", time.Since(start).Milliseconds())
	return doc, nil
}

// EnhanceSceneDescription rewrites description with consistency cues and
// a target style. It is best effort: any failure yields the original.
func (d *Drafter) EnhanceSceneDescription(ctx context.Context, description, digest, style string) string {
	if strings.TrimSpace(description) == "" {
		return description
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	out, err := d.text.Complete(ctx, provider.TextRequest{
		System:    promptEngineerPersona,
		Prompt:    buildEnhancePrompt(description, digest, style),
		MaxTokens: enhanceMaxTokens,
	})
	if err != nil {
		d.logger.WarnContext(ctx, "scene enhancement failed, keeping original", "err", err)
		return description
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return description
	}
	return out
}
