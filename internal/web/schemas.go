package web

import (
	"cartoon-story-bot/internal/pipeline"
	"cartoon-story-bot/internal/settings"
)

const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeMissingImage = "MISSING_IMAGE"
	CodeInvalidImage = "INVALID_IMAGE"
	CodeInvalidField = "INVALID_FIELD"
	CodeNotFound     = "NOT_FOUND"
	CodeTimeout      = "TIMEOUT"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type GenresResponse struct {
	Default string                 `json:"default"`
	Genres  []settings.NamedOption `json:"genres"`
}

type SceneResponse struct {
	Number      int    `json:"number"`
	Description string `json:"description"`
	Narrative   string `json:"narrative"`
	Image       string `json:"image"`
}

type StoryResponse struct {
	PackageID    string                  `json:"package_id"`
	Title        string                  `json:"title"`
	Introduction string                  `json:"introduction"`
	Scenes       []SceneResponse         `json:"scenes"`
	Conclusion   string                  `json:"conclusion"`
	Failures     []pipeline.SceneFailure `json:"failures,omitempty"`
	Settings     settings.Options        `json:"settings"`
}
