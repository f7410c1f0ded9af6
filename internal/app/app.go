// Package app assembles the story pipeline from configuration. Both
// entrypoints share it.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"cartoon-story-bot/internal/config"
	"cartoon-story-bot/internal/gemini"
	"cartoon-story-bot/internal/illustrate"
	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/openai"
	"cartoon-story-bot/internal/pipeline"
	"cartoon-story-bot/internal/provider"
	"cartoon-story-bot/internal/settings"
	"cartoon-story-bot/internal/story"
	"cartoon-story-bot/internal/vision"
)

// NewService returns the AI client selected by cfg.Provider.
func NewService(cfg config.Config, httpClient *http.Client, logger *slog.Logger) (provider.Service, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.New(openai.Options{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			TextModel:  cfg.OpenAITextModel,
			ImageModel: cfg.OpenAIImageModel,
			HTTPClient: httpClient,
			Logger:     logger,
		}), nil
	case config.ProviderGemini:
		return gemini.New(gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			TextModel:  cfg.GeminiTextModel,
			ImageModel: cfg.GeminiImageModel,
			HTTPClient: httpClient,
			Logger:     logger,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// NewPipeline wires analysis, drafting and illustration to svc.
func NewPipeline(cfg config.Config, svc provider.Service, logger *slog.Logger) (*pipeline.Pipeline, error) {
	analyzer, err := vision.New(vision.Options{
		Text:    svc,
		Timeout: cfg.AnalysisTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	drafter, err := story.New(story.Options{
		Text:    svc,
		Timeout: cfg.HTTPTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	illustrator, err := illustrate.New(illustrate.Options{
		Features:     analyzer,
		Images:       svc,
		Concurrency:  cfg.SceneConcurrency,
		RateInterval: cfg.SceneRateInterval,
		SceneTimeout: cfg.SceneTimeout,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Options{
		Analyzer:    analyzer,
		Drafter:     drafter,
		Illustrator: illustrator,
		Logger:      logger,
	})
}

// DefaultSettings are the story options a new user or form starts from.
func DefaultSettings(cfg config.Config) settings.Options {
	opts := settings.Defaults()
	opts.Enhance = cfg.EnhanceScenes
	return opts
}

// LogStartup reports the provider in use and any configuration warnings.
func LogStartup(cfg config.Config, logger *slog.Logger) {
	logger.Info("ai provider", "provider", cfg.Provider, "api_key", logging.MaskKey(cfg.APIKey()))
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}
}
