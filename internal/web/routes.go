package web

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"cartoon-story-bot/internal/imaging"
	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/pack"
	"cartoon-story-bot/internal/pipeline"
	"cartoon-story-bot/internal/settings"
	"cartoon-story-bot/internal/story"
)

const maxUploadBytes = 25 << 20

type StoryCreator interface {
	CreateStory(ctx context.Context, ref image.Image, req pipeline.Request) (pipeline.Result, error)
}

type ServerConfig struct {
	Addr     string
	Stories  StoryCreator
	Packages *PackageStore
	// Defaults fill form fields the client leaves out.
	Defaults       settings.Options
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func NewRouter(cfg ServerConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Packages == nil {
		cfg.Packages = NewPackageStore(0)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 600 * time.Second
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/healthz", healthHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/genres", genresHandler())
		r.Post("/stories", createStoryHandler(cfg))
		r.Get("/stories/{id}/package", packageHandler(cfg))
	})

	return r
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

func genresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, GenresResponse{
			Default: settings.DefaultGenre,
			Genres:  settings.Genres(),
		})
	}
}

func createStoryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logging.WithRequestID(cfg.Logger, RequestID(r.Context()))

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart form", CodeBadRequest)
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "missing image", CodeMissingImage)
			return
		}
		defer file.Close()

		imgBytes, err := io.ReadAll(file)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "failed to read image", CodeBadRequest)
			return
		}
		ref, format, err := imaging.Decode(imgBytes)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "unsupported or corrupt image", CodeInvalidImage)
			return
		}

		opts, err := optionsFromForm(r, cfg.Defaults)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidField)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.Info("story requested", "format", format, "bytes", len(imgBytes), "scenes", opts.NumScenes, "genre", opts.Genre)

		result, err := cfg.Stories.CreateStory(ctx, ref, pipeline.RequestFromOptions(opts))
		if err != nil {
			status, code := errorStatus(err)
			logger.Warn("story failed", "err", err, "status", status)
			WriteError(w, status, pipeline.UserMessage(err), code)
			return
		}

		resp, err := storyResponse(result, opts)
		if err != nil {
			logger.Error("encode scene images", "err", err)
			WriteError(w, http.StatusInternalServerError, "failed to encode images", CodeInternal)
			return
		}
		resp.PackageID = cfg.Packages.Add(result)

		WriteJSON(w, http.StatusOK, resp)
	}
}

func packageHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		data, err := cfg.Packages.Package(id)
		if errors.Is(err, ErrPackageNotFound) {
			WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
			return
		}
		if err != nil {
			cfg.Logger.Error("build package", "err", err, "package_id", id)
			WriteError(w, http.StatusInternalServerError, pipeline.UserMessage(err), CodeInternal)
			return
		}

		w.Header().Set("Content-Type", pack.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pack.FileName))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// formFields maps multipart field names to settings keys.
var formFields = []string{"num_scenes", "words_per_page", "genre", "style_strength", "detail_level", "enhance"}

func optionsFromForm(r *http.Request, defaults settings.Options) (settings.Options, error) {
	opts := defaults.Normalize()
	for _, field := range formFields {
		value := strings.TrimSpace(r.FormValue(field))
		if value == "" {
			continue
		}
		if !settings.Apply(&opts, field, value) {
			return settings.Options{}, fmt.Errorf("invalid value for %s: %q", field, value)
		}
	}
	opts.Idea = strings.TrimSpace(r.FormValue("story_idea"))
	return opts.Normalize(), nil
}

func storyResponse(result pipeline.Result, opts settings.Options) (StoryResponse, error) {
	doc := result.Story
	resp := StoryResponse{
		Title:        doc.Title,
		Introduction: doc.Introduction,
		Conclusion:   doc.Conclusion,
		Failures:     result.Failures,
		Settings:     opts,
		Scenes:       make([]SceneResponse, len(doc.Scenes)),
	}
	for i, scene := range doc.Scenes {
		resp.Scenes[i] = SceneResponse{
			Number:      i + 1,
			Description: scene.Description,
			Narrative:   scene.Narrative,
		}
		if i >= len(result.Images) {
			continue
		}
		data, err := imaging.EncodePNG(result.Images[i])
		if err != nil {
			return StoryResponse{}, err
		}
		resp.Scenes[i].Image = imaging.DataURL("image/png", data)
	}
	return resp, nil
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	case errors.Is(err, imaging.ErrEmptyImage):
		return http.StatusBadRequest, CodeInvalidImage
	case errors.Is(err, story.ErrInvalidRequest):
		return http.StatusBadRequest, CodeInvalidField
	default:
		return http.StatusBadGateway, CodeUpstream
	}
}
