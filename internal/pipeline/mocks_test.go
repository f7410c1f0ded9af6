package pipeline

import (
	"context"
	"image"

	"cartoon-story-bot/internal/illustrate"
	"cartoon-story-bot/internal/provider"
	"cartoon-story-bot/internal/story"
)

// fakeService stands in for the AI provider behind every stage.
type fakeService struct {
	completeFunc   func(ctx context.Context, req provider.TextRequest) (string, error)
	synthesizeFunc func(ctx context.Context, req provider.ImageRequest) ([]byte, error)
}

func (f *fakeService) Complete(ctx context.Context, req provider.TextRequest) (string, error) {
	return f.completeFunc(ctx, req)
}

func (f *fakeService) Synthesize(ctx context.Context, req provider.ImageRequest) ([]byte, error) {
	return f.synthesizeFunc(ctx, req)
}

type mockAnalyzer struct {
	analyzeFunc  func(ctx context.Context, img image.Image) (string, error)
	featuresFunc func(ctx context.Context, img image.Image) (string, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, img image.Image) (string, error) {
	return m.analyzeFunc(ctx, img)
}

func (m *mockAnalyzer) ExtractFeatures(ctx context.Context, img image.Image) (string, error) {
	return m.featuresFunc(ctx, img)
}

type mockDrafter struct {
	generateFunc func(ctx context.Context, req story.Request) (story.Document, error)
	enhanceFunc  func(ctx context.Context, description, digest, style string) string
}

func (m *mockDrafter) Generate(ctx context.Context, req story.Request) (story.Document, error) {
	return m.generateFunc(ctx, req)
}

func (m *mockDrafter) EnhanceSceneDescription(ctx context.Context, description, digest, style string) string {
	return m.enhanceFunc(ctx, description, digest, style)
}

type mockIllustrator struct {
	batchRenderFunc func(ctx context.Context, ref image.Image, descriptions []string, params illustrate.Params) []illustrate.Outcome
}

func (m *mockIllustrator) BatchRender(ctx context.Context, ref image.Image, descriptions []string, params illustrate.Params) []illustrate.Outcome {
	return m.batchRenderFunc(ctx, ref, descriptions, params)
}
