// Package pipeline turns one reference image into an illustrated story:
// analysis, drafting, illustration and packaging, strictly in sequence.
package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"
	"time"

	"cartoon-story-bot/internal/illustrate"
	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/pack"
	"cartoon-story-bot/internal/settings"
	"cartoon-story-bot/internal/story"
)

type Analyzer interface {
	Analyze(ctx context.Context, img image.Image) (string, error)
	ExtractFeatures(ctx context.Context, img image.Image) (string, error)
}

type Drafter interface {
	Generate(ctx context.Context, req story.Request) (story.Document, error)
	EnhanceSceneDescription(ctx context.Context, description, digest, style string) string
}

type Illustrator interface {
	BatchRender(ctx context.Context, ref image.Image, descriptions []string, params illustrate.Params) []illustrate.Outcome
}

type Options struct {
	Analyzer    Analyzer
	Drafter     Drafter
	Illustrator Illustrator
	Logger      *slog.Logger
}

type Pipeline struct {
	analyzer    Analyzer
	drafter     Drafter
	illustrator Illustrator
	logger      *slog.Logger
}

func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Analyzer == nil:
		return nil, errors.New("pipeline: analyzer is nil")
	case opts.Drafter == nil:
		return nil, errors.New("pipeline: drafter is nil")
	case opts.Illustrator == nil:
		return nil, errors.New("pipeline: illustrator is nil")
	}
	return &Pipeline{
		analyzer:    opts.Analyzer,
		drafter:     opts.Drafter,
		illustrator: opts.Illustrator,
		logger:      logging.WithComponent(opts.Logger, "pipeline"),
	}, nil
}

// Request is the fixed parameter set of one story. Genre is a catalog key
// or display name.
type Request struct {
	NumScenes     int
	Genre         string
	Idea          string
	WordsPerPage  int
	StyleStrength float64
	DetailLevel   int
	Enhance       bool
}

// RequestFromOptions copies user settings into a pipeline request.
func RequestFromOptions(o settings.Options) Request {
	return Request{
		NumScenes:     o.NumScenes,
		Genre:         o.Genre,
		Idea:          o.Idea,
		WordsPerPage:  o.WordsPerPage,
		StyleStrength: o.StyleStrength,
		DetailLevel:   o.DetailLevel,
		Enhance:       o.Enhance,
	}
}

type SceneFailure struct {
	Scene      int    `json:"scene"`
	Diagnostic string `json:"diagnostic"`
}

type Result struct {
	Story    story.Document
	Images   []image.Image
	Failures []SceneFailure
}

// CreateStory runs the four stages. Analysis and drafting errors are
// returned unchanged; scene failures are reported in Result.Failures and
// replaced by placeholders.
func (p *Pipeline) CreateStory(ctx context.Context, ref image.Image, req Request) (Result, error) {
	start := time.Now()
	genre, style := genreLabels(req.Genre)

	analysis, err := p.analyzer.Analyze(ctx, ref)
	if err != nil {
		return Result{}, err
	}

	doc, err := p.drafter.Generate(ctx, story.Request{
		Analysis:     analysis,
		NumScenes:    req.NumScenes,
		Genre:        genre,
		Idea:         req.Idea,
		WordsPerPage: req.WordsPerPage,
	})
	if err != nil {
		return Result{}, err
	}

	if drift := story.DriftingScenes(doc); len(drift) > 0 {
		p.logger.WarnContext(ctx, "scene descriptions may not feature the protagonist", "scenes", drift, "protagonist", story.Protagonist(doc.Scenes[0].Description))
	}

	descriptions := doc.Descriptions()
	if req.Enhance {
		descriptions = p.enhance(ctx, ref, descriptions, style)
	}

	outcomes := p.illustrator.BatchRender(ctx, ref, descriptions, illustrate.Params{
		StyleStrength: req.StyleStrength,
		DetailLevel:   req.DetailLevel,
	})

	result := Result{
		Story:  doc,
		Images: illustrate.Images(outcomes),
	}
	for i, o := range outcomes {
		if !o.OK() {
			result.Failures = append(result.Failures, SceneFailure{Scene: i + 1, Diagnostic: o.Diagnostic()})
		}
	}

	p.logger.InfoContext(ctx, "story created",
		"title", doc.Title,
		"scenes", len(doc.Scenes),
		"failed_scenes", len(result.Failures),
		"genre", genre,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// genreLabels resolves catalog genres to their display name and art
// direction. Other non-blank genres are used verbatim for both.
func genreLabels(genre string) (string, string) {
	if _, g, ok := settings.LookupGenre(genre); ok {
		return g.Name, g.Style
	}
	if g := strings.TrimSpace(genre); g != "" {
		return g, g
	}
	return settings.GenreName(settings.DefaultGenre), settings.GenreStyle(settings.DefaultGenre)
}

// enhance rewrites descriptions with one shared digest. A failed digest
// leaves the descriptions as drafted.
func (p *Pipeline) enhance(ctx context.Context, ref image.Image, descriptions []string, style string) []string {
	digest, err := p.analyzer.ExtractFeatures(ctx, ref)
	if err != nil {
		p.logger.WarnContext(ctx, "skipping scene enhancement", "err", err)
		return descriptions
	}

	out := make([]string, len(descriptions))
	for i, d := range descriptions {
		out[i] = p.drafter.EnhanceSceneDescription(ctx, d, digest, style)
	}
	return out
}

// Package builds the downloadable archive of a result.
func (p *Pipeline) Package(result Result) ([]byte, error) {
	return pack.Build(result.Story, result.Images)
}
