package illustrate

import (
	"image"

	"cartoon-story-bot/internal/imaging"
)

// SynthesisError describes why one scene could not be illustrated. It is
// carried inside a failed Outcome and never returned by the batch API.
type SynthesisError struct {
	Step string
	Err  error
}

func (e *SynthesisError) Error() string { return "scene synthesis: " + e.Step + ": " + e.Err.Error() }
func (e *SynthesisError) Unwrap() error { return e.Err }

// Outcome is either a synthesized image or a failure with a diagnostic.
type Outcome struct {
	img        image.Image
	err        error
	diagnostic string
}

func Ok(img image.Image) Outcome {
	return Outcome{img: img}
}

func Failed(err error, diagnostic string) Outcome {
	if diagnostic == "" && err != nil {
		diagnostic = err.Error()
	}
	return Outcome{err: err, diagnostic: diagnostic}
}

func (o Outcome) OK() bool           { return o.err == nil && o.img != nil }
func (o Outcome) Err() error         { return o.err }
func (o Outcome) Diagnostic() string { return o.diagnostic }

// Image returns the synthesized image, or the diagnostic placeholder for
// a failed outcome.
func (o Outcome) Image() image.Image {
	if o.OK() {
		return o.img
	}
	return imaging.Placeholder(o.diagnostic)
}

// Images renders every outcome, keeping positions.
func Images(outcomes []Outcome) []image.Image {
	out := make([]image.Image, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Image()
	}
	return out
}
