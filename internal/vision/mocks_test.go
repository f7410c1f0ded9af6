package vision

import (
	"context"

	"cartoon-story-bot/internal/provider"
)

type mockText struct {
	completeFunc func(ctx context.Context, req provider.TextRequest) (string, error)
}

func (m *mockText) Complete(ctx context.Context, req provider.TextRequest) (string, error) {
	return m.completeFunc(ctx, req)
}
