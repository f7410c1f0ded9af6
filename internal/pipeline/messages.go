package pipeline

import (
	"context"
	"errors"

	"cartoon-story-bot/internal/imaging"
	"cartoon-story-bot/internal/pack"
	"cartoon-story-bot/internal/story"
	"cartoon-story-bot/internal/vision"
)

// UserMessage maps a pipeline error to one line suitable for end users.
func UserMessage(err error) string {
	var (
		analysisErr *vision.AnalysisError
		featureErr  *vision.FeatureExtractionError
		genErr      *story.GenerationError
		parseErr    *story.ParseError
		schemaErr   *story.SchemaError
		packErr     *pack.Error
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "The story took too long to create. Please try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, imaging.ErrEmptyImage):
		return "The uploaded image is empty. Please upload a JPG or PNG picture."
	case errors.As(err, &analysisErr):
		return "We could not analyze your image. Please try a different picture."
	case errors.As(err, &featureErr):
		return "We could not read the visual style of your image. Please try again."
	case errors.Is(err, story.ErrInvalidRequest):
		return "The story settings are invalid. Please check the number of scenes and story length."
	case errors.As(err, &parseErr), errors.As(err, &schemaErr):
		return "The story came back incomplete. Please try again."
	case errors.As(err, &genErr):
		return "We could not write your story right now. Please try again."
	case errors.As(err, &packErr):
		return "We could not prepare the download package."
	default:
		return "Oops! Something went wrong. Please try again."
	}
}
