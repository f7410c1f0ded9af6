// Package provider defines the request shapes shared by the AI service
// clients and the interfaces the pipeline stages consume.
package provider

import (
	"context"
	"errors"
)

const (
	SizeSquare      = "1024x1024"
	QualityStandard = "standard"
)

// ErrEmptyResponse is returned when a service answers without usable content.
var ErrEmptyResponse = errors.New("empty response from AI service")

// TextRequest is one chat-style call. ImageDataURLs carry inline
// base64 images for vision calls.
type TextRequest struct {
	System        string
	Prompt        string
	ImageDataURLs []string
	MaxTokens     int
	JSON          bool
}

// ImageRequest asks for exactly one image.
//
// StyleStrength, DetailLevel and Deviation follow the usual diffusion
// controls (guidance scale, inference steps, img2img strength). Providers
// without such controls may ignore them. ReferenceDataURL is only used by
// providers that accept image conditioning.
type ImageRequest struct {
	Prompt           string
	Size             string
	Quality          string
	ReferenceDataURL string
	StyleStrength    float64
	DetailLevel      int
	Deviation        float64
}

type TextGenerator interface {
	Complete(ctx context.Context, req TextRequest) (string, error)
}

// ImageSynthesizer returns the encoded bytes of the synthesized image.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, req ImageRequest) ([]byte, error)
}

// Service is implemented by clients that cover both text and images.
type Service interface {
	TextGenerator
	ImageSynthesizer
}
