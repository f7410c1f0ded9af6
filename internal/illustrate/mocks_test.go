package illustrate

import (
	"context"
	"image"

	"cartoon-story-bot/internal/provider"
)

type mockFeatures struct {
	extractFunc func(ctx context.Context, img image.Image) (string, error)
}

func (m *mockFeatures) ExtractFeatures(ctx context.Context, img image.Image) (string, error) {
	return m.extractFunc(ctx, img)
}

type mockImages struct {
	synthesizeFunc func(ctx context.Context, req provider.ImageRequest) ([]byte, error)
}

func (m *mockImages) Synthesize(ctx context.Context, req provider.ImageRequest) ([]byte, error) {
	return m.synthesizeFunc(ctx, req)
}
