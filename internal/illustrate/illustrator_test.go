package illustrate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartoon-story-bot/internal/provider"
)

var placeholderGrey = color.RGBA{R: 240, G: 240, B: 240, A: 255}

// pngOfWidth encodes a tiny image whose width identifies it in assertions.
func pngOfWidth(t *testing.T, w int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func reference() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 80, 60))
}

func isPlaceholder(img image.Image) bool {
	return img.Bounds().Dx() == 1024 && color.RGBAModel.Convert(img.At(3, 3)) == placeholderGrey
}

func digestOK() *mockFeatures {
	return &mockFeatures{extractFunc: func(context.Context, image.Image) (string, error) {
		return "cel shaded blue dragon", nil
	}}
}

func sceneIndex(prompt string) int {
	var n int
	if i := strings.Index(prompt, "scene "); i >= 0 {
		_, _ = fmt.Sscanf(prompt[i:], "scene %d", &n)
	}
	return n
}

func TestDeviationForPosition(t *testing.T) {
	assert.Equal(t, 0.6, DeviationForPosition(0, 5))
	assert.Equal(t, 0.8, DeviationForPosition(1, 5))
	assert.Equal(t, 0.8, DeviationForPosition(3, 5))
	assert.Equal(t, 0.7, DeviationForPosition(4, 5))
	assert.Equal(t, 0.6, DeviationForPosition(0, 1))
	assert.Equal(t, 0.7, DeviationForPosition(1, 2))

	for total := 3; total <= 12; total++ {
		first := DeviationForPosition(0, total)
		last := DeviationForPosition(total-1, total)
		for mid := 1; mid < total-1; mid++ {
			m := DeviationForPosition(mid, total)
			assert.Less(t, first, m)
			assert.Greater(t, m, last)
			assert.Greater(t, last, first)
		}
	}
}

func TestScenePrompt(t *testing.T) {
	digest := strings.Repeat("a", 150) + strings.Repeat("b", 150)
	p := ScenePrompt("The blue dragon from the reference image lands on Mars", digest)

	assert.True(t, strings.HasPrefix(p, "Based on the uploaded reference image style and main character: The blue dragon"))
	assert.Contains(t, p, "same species, appearance, colors")
	assert.Contains(t, p, strings.Repeat("a", 150)+strings.Repeat("b", 50)+". ")
	assert.NotContains(t, p, strings.Repeat("b", 51))
	assert.True(t, strings.HasSuffix(p, "High quality, detailed, consistent character design."))
}

func TestNewValidatesDependencies(t *testing.T) {
	_, err := New(Options{Images: &mockImages{}})
	assert.Error(t, err)
	_, err = New(Options{Features: digestOK()})
	assert.Error(t, err)
}

func TestRenderSuccess(t *testing.T) {
	var got provider.ImageRequest
	il, err := New(Options{
		Features: digestOK(),
		Images: &mockImages{synthesizeFunc: func(ctx context.Context, req provider.ImageRequest) ([]byte, error) {
			got = req
			return pngOfWidth(t, 16), nil
		}},
	})
	require.NoError(t, err)

	o := il.Render(context.Background(), reference(), "The blue dragon from the reference image waves", Params{}, 0.6)
	require.True(t, o.OK())
	assert.Equal(t, 16, o.Image().Bounds().Dx())

	assert.Contains(t, got.Prompt, "The blue dragon from the reference image waves")
	assert.Contains(t, got.Prompt, "cel shaded blue dragon")
	assert.Equal(t, "1024x1024", got.Size)
	assert.Equal(t, "standard", got.Quality)
	assert.Equal(t, 0.6, got.Deviation)
	assert.Equal(t, DefaultStyleStrength, got.StyleStrength)
	assert.Equal(t, DefaultDetailLevel, got.DetailLevel)
	assert.True(t, strings.HasPrefix(got.ReferenceDataURL, "data:image/jpeg;base64,"))
}

func TestRenderFailuresBecomePlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		ref      image.Image
		features *mockFeatures
		images   *mockImages
		step     string
	}{
		{
			name:     "bad reference",
			ref:      image.NewRGBA(image.Rect(0, 0, 0, 0)),
			features: digestOK(),
			images:   &mockImages{},
			step:     "prepare reference",
		},
		{
			name: "digest fails",
			ref:  reference(),
			features: &mockFeatures{extractFunc: func(context.Context, image.Image) (string, error) {
				return "", errors.New("vision down")
			}},
			images: &mockImages{},
			step:   "feature digest",
		},
		{
			name:     "service unreachable",
			ref:      reference(),
			features: digestOK(),
			images: &mockImages{synthesizeFunc: func(context.Context, provider.ImageRequest) ([]byte, error) {
				return nil, errors.New("dial tcp: connection refused")
			}},
			step: "synthesize",
		},
		{
			name:     "undecodable bytes",
			ref:      reference(),
			features: digestOK(),
			images: &mockImages{synthesizeFunc: func(context.Context, provider.ImageRequest) ([]byte, error) {
				return []byte("<html>expired</html>"), nil
			}},
			step: "decode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			il, err := New(Options{Features: tt.features, Images: tt.images})
			require.NoError(t, err)

			o := il.Render(context.Background(), tt.ref, "scene", Params{}, 0.8)
			require.False(t, o.OK())
			var se *SynthesisError
			require.ErrorAs(t, o.Err(), &se)
			assert.Equal(t, tt.step, se.Step)
			assert.True(t, isPlaceholder(o.Image()))

			img := il.GenerateOne(context.Background(), tt.ref, "scene", Params{}, 0.8)
			assert.True(t, isPlaceholder(img))
		})
	}
}

func TestBatchGenerateIsolatesSceneFailure(t *testing.T) {
	il, err := New(Options{
		Features: digestOK(),
		Images: &mockImages{synthesizeFunc: func(ctx context.Context, req provider.ImageRequest) ([]byte, error) {
			n := sceneIndex(req.Prompt)
			if n == 2 {
				return nil, errors.New("image service unreachable")
			}
			return pngOfWidth(t, n), nil
		}},
	})
	require.NoError(t, err)

	descs := []string{"dragon scene 1", "dragon scene 2", "dragon scene 3"}
	outcomes := il.BatchRender(context.Background(), reference(), descs, Params{})
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].OK())
	assert.False(t, outcomes[1].OK())
	assert.True(t, outcomes[2].OK())
	assert.Equal(t, "image service unreachable", outcomes[1].Diagnostic())
	var se *SynthesisError
	require.ErrorAs(t, outcomes[1].Err(), &se)
	assert.Equal(t, "synthesize", se.Step)

	images := il.BatchGenerate(context.Background(), reference(), descs, Params{})
	require.Len(t, images, 3)
	assert.Equal(t, 1, images[0].Bounds().Dx())
	assert.True(t, isPlaceholder(images[1]))
	assert.Equal(t, 3, images[2].Bounds().Dx())
}

func TestBatchGenerateLengthUnderTotalFailure(t *testing.T) {
	il, err := New(Options{
		Features:    digestOK(),
		Concurrency: 3,
		Images: &mockImages{synthesizeFunc: func(context.Context, provider.ImageRequest) ([]byte, error) {
			return nil, errors.New("down")
		}},
	})
	require.NoError(t, err)

	for n := 1; n <= 6; n++ {
		descs := make([]string, n)
		images := il.BatchGenerate(context.Background(), reference(), descs, Params{})
		require.Len(t, images, n)
		for _, img := range images {
			assert.True(t, isPlaceholder(img))
		}
	}
}

func TestBatchRenderKeepsOrderWhenConcurrent(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0
	il, err := New(Options{
		Features:    digestOK(),
		Concurrency: 3,
		Images: &mockImages{synthesizeFunc: func(ctx context.Context, req provider.ImageRequest) ([]byte, error) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()
			time.Sleep(time.Duration(rand.Intn(15)) * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
			return pngOfWidth(t, sceneIndex(req.Prompt)), nil
		}},
	})
	require.NoError(t, err)

	descs := make([]string, 8)
	for i := range descs {
		descs[i] = fmt.Sprintf("dragon scene %d", i+1)
	}
	images := il.BatchGenerate(context.Background(), reference(), descs, Params{})
	require.Len(t, images, 8)
	for i, img := range images {
		assert.Equal(t, i+1, img.Bounds().Dx(), "image %d out of order", i)
	}
	assert.LessOrEqual(t, peak, 3)
}

func TestBatchRenderPassesPositionalDeviation(t *testing.T) {
	var mu sync.Mutex
	got := map[int]float64{}
	il, err := New(Options{
		Features: digestOK(),
		Images: &mockImages{synthesizeFunc: func(ctx context.Context, req provider.ImageRequest) ([]byte, error) {
			mu.Lock()
			got[sceneIndex(req.Prompt)] = req.Deviation
			mu.Unlock()
			return pngOfWidth(t, 1), nil
		}},
	})
	require.NoError(t, err)

	il.BatchRender(context.Background(), reference(), []string{"scene 1", "scene 2", "scene 3", "scene 4"}, Params{StyleStrength: 12, DetailLevel: 40})
	assert.Equal(t, map[int]float64{1: 0.6, 2: 0.8, 3: 0.8, 4: 0.7}, got)
}

func TestBatchRenderCancelledContext(t *testing.T) {
	il, err := New(Options{
		Features: &mockFeatures{extractFunc: func(ctx context.Context, _ image.Image) (string, error) {
			return "", ctx.Err()
		}},
		Images:       &mockImages{},
		RateInterval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := il.BatchRender(ctx, reference(), []string{"a", "b"}, Params{})
	require.Len(t, outcomes, 2)
	for i, o := range outcomes {
		assert.False(t, o.OK())
		assert.ErrorIs(t, o.Err(), context.Canceled)
		assert.Equal(t, fmt.Sprintf("Scene %d generation failed: context canceled", i+1), o.Diagnostic())
	}
}

func TestBatchRenderRespectsRateInterval(t *testing.T) {
	il, err := New(Options{
		Features:     digestOK(),
		Concurrency:  3,
		RateInterval: 25 * time.Millisecond,
		Images: &mockImages{synthesizeFunc: func(context.Context, provider.ImageRequest) ([]byte, error) {
			return pngOfWidth(t, 1), nil
		}},
	})
	require.NoError(t, err)

	start := time.Now()
	il.BatchRender(context.Background(), reference(), []string{"a", "b", "c"}, Params{})
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestSceneTimeoutBecomesPlaceholder(t *testing.T) {
	il, err := New(Options{
		Features:     digestOK(),
		SceneTimeout: 10 * time.Millisecond,
		Images: &mockImages{synthesizeFunc: func(ctx context.Context, req provider.ImageRequest) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
	})
	require.NoError(t, err)

	o := il.Render(context.Background(), reference(), "slow", Params{}, 0.6)
	assert.ErrorIs(t, o.Err(), context.DeadlineExceeded)
	assert.True(t, isPlaceholder(o.Image()))
}
