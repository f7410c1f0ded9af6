// Package illustrate synthesizes one image per scene while keeping the
// reference subject recognisable. A scene that fails is replaced by a
// diagnostic placeholder so a batch always yields one image per scene.
package illustrate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"cartoon-story-bot/internal/imaging"
	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/provider"
)

const (
	DefaultStyleStrength = 7.5
	DefaultDetailLevel   = 30
)

// Params are diffusion-style controls passed through to the image service.
type Params struct {
	StyleStrength float64
	DetailLevel   int
}

func (p Params) withDefaults() Params {
	if p.StyleStrength <= 0 {
		p.StyleStrength = DefaultStyleStrength
	}
	if p.DetailLevel <= 0 {
		p.DetailLevel = DefaultDetailLevel
	}
	return p
}

type FeatureExtractor interface {
	ExtractFeatures(ctx context.Context, img image.Image) (string, error)
}

type Options struct {
	Features FeatureExtractor
	Images   provider.ImageSynthesizer

	// Concurrency bounds parallel scenes. Values below 1 mean sequential.
	Concurrency int
	// RateInterval spaces synthesis requests. Zero disables pacing.
	RateInterval time.Duration
	SceneTimeout time.Duration
	Logger       *slog.Logger
}

type Illustrator struct {
	features     FeatureExtractor
	images       provider.ImageSynthesizer
	concurrency  int
	limiter      *rate.Limiter
	sceneTimeout time.Duration
	logger       *slog.Logger
}

func New(opts Options) (*Illustrator, error) {
	if opts.Features == nil {
		return nil, errors.New("illustrate: feature extractor is nil")
	}
	if opts.Images == nil {
		return nil, errors.New("illustrate: image synthesizer is nil")
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	timeout := opts.SceneTimeout
	if timeout <= 0 {
		timeout = 150 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RateInterval), 1)
	}

	return &Illustrator{
		features:     opts.Features,
		images:       opts.Images,
		concurrency:  concurrency,
		limiter:      limiter,
		sceneTimeout: timeout,
		logger:       logging.WithComponent(opts.Logger, "illustrate"),
	}, nil
}

// GenerateOne never fails: errors become a placeholder image.
func (il *Illustrator) GenerateOne(ctx context.Context, ref image.Image, description string, params Params, deviation float64) image.Image {
	return il.Render(ctx, ref, description, params, deviation).Image()
}

// Render performs one scene synthesis and reports the typed outcome.
func (il *Illustrator) Render(ctx context.Context, ref image.Image, description string, params Params, deviation float64) Outcome {
	ctx, cancel := context.WithTimeout(ctx, il.sceneTimeout)
	defer cancel()

	params = params.withDefaults()

	reference, err := imaging.ReferenceDataURL(ref)
	if err != nil {
		return sceneFailed("prepare reference", err)
	}

	digest, err := il.features.ExtractFeatures(ctx, ref)
	if err != nil {
		return sceneFailed("feature digest", err)
	}

	data, err := il.images.Synthesize(ctx, provider.ImageRequest{
		Prompt:           ScenePrompt(description, digest),
		Size:             provider.SizeSquare,
		Quality:          provider.QualityStandard,
		ReferenceDataURL: reference,
		StyleStrength:    params.StyleStrength,
		DetailLevel:      params.DetailLevel,
		Deviation:        deviation,
	})
	if err != nil {
		return sceneFailed("synthesize", err)
	}

	img, _, err := imaging.Decode(data)
	if err != nil {
		return sceneFailed("decode", err)
	}
	return Ok(img)
}

// sceneFailed keeps the raw cause as the placeholder diagnostic.
func sceneFailed(step string, err error) Outcome {
	return Failed(&SynthesisError{Step: step, Err: err}, err.Error())
}

// BatchGenerate returns exactly one image per description, in order.
func (il *Illustrator) BatchGenerate(ctx context.Context, ref image.Image, descriptions []string, params Params) []image.Image {
	return Images(il.BatchRender(ctx, ref, descriptions, params))
}

// BatchRender runs the scenes with bounded concurrency and optional
// pacing. outcomes[i] always corresponds to descriptions[i].
func (il *Illustrator) BatchRender(ctx context.Context, ref image.Image, descriptions []string, params Params) []Outcome {
	outcomes := make([]Outcome, len(descriptions))
	total := len(descriptions)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(il.concurrency)

	for i, description := range descriptions {
		i, description := i, description
		g.Go(func() error {
			start := time.Now()
			deviation := DeviationForPosition(i, total)

			var o Outcome
			if il.limiter != nil {
				if err := il.limiter.Wait(gctx); err != nil {
					o = Failed(&SynthesisError{Step: "rate limit", Err: err}, fmt.Sprintf("Scene %d generation failed: %s", i+1, err))
				}
			}
			if o.Err() == nil {
				o = il.Render(gctx, ref, description, params, deviation)
			}

			if !o.OK() {
				il.logger.WarnContext(ctx, "scene illustration failed", "scene", i+1, "total", total, "err", o.Err())
			} else {
				il.logger.InfoContext(ctx, "scene illustrated", "scene", i+1, "total", total, "deviation", deviation, "duration_ms", time.Since(start).Milliseconds())
			}
			outcomes[i] = o
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
