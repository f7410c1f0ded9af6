package handlers

import (
	"context"
	"time"

	"cartoon-story-bot/internal/imaging"
	"cartoon-story-bot/internal/pack"
	"cartoon-story-bot/internal/pipeline"
	"cartoon-story-bot/internal/settings"
)

func (h *Handler) processPhoto(ctx context.Context, chatID int64, userID int64, username, caption, fileID string) error {
	if !h.sessions.TryBegin(userID, username) {
		return h.tg.SendText(chatID, busyText)
	}
	defer h.sessions.End(userID)

	opts := settings.ParseArgs(caption, h.sessions.Settings(userID, username)).Normalize()
	logger := h.logger.With("chat_id", chatID, "user_id", userID)

	h.tg.SendTyping(chatID)

	data, err := h.tg.DownloadFile(ctx, fileID)
	if err != nil {
		logger.Error("photo download failed", "err", err)
		return h.tg.SendText(chatID, "❌ Could not download your photo. Please try again.")
	}
	ref, _, err := imaging.Decode(data)
	if err != nil {
		logger.Warn("photo decode failed", "err", err, "bytes", len(data))
		return h.tg.SendText(chatID, "❌ I could not read that picture. Please send a JPG or PNG photo.")
	}

	_ = h.tg.SendText(chatID, progressText(opts))

	start := time.Now()
	result, err := h.stories.CreateStory(ctx, ref, pipeline.RequestFromOptions(opts))
	if err != nil {
		logger.Error("story failed", "err", err, "duration_ms", time.Since(start).Milliseconds())
		return h.tg.SendText(chatID, "❌ "+pipeline.UserMessage(err))
	}
	logger.Info("story ready", "scenes", len(result.Story.Scenes), "failed_scenes", len(result.Failures), "duration_ms", time.Since(start).Milliseconds())

	return h.deliver(chatID, result)
}

// deliver sends the opening, every scene with its narrative, the ending
// and finally the zip package.
func (h *Handler) deliver(chatID int64, result pipeline.Result) error {
	doc := result.Story

	if err := h.tg.SendText(chatID, openingText(doc)); err != nil {
		return err
	}

	for i, scene := range doc.Scenes {
		if i >= len(result.Images) {
			break
		}
		h.tg.SendUploadingPhoto(chatID)
		data, err := imaging.EncodePNG(result.Images[i])
		if err != nil {
			h.logger.Error("encode scene failed", "scene", i+1, "err", err)
			continue
		}
		if err := h.tg.SendPhoto(chatID, pack.SceneEntry(i+1), data, sceneCaption(i+1, scene)); err != nil {
			return err
		}
	}

	if err := h.tg.SendText(chatID, closingText(doc)); err != nil {
		return err
	}
	if note := failuresText(result.Failures); note != "" {
		_ = h.tg.SendText(chatID, note)
	}

	zip, err := h.stories.Package(result)
	if err != nil {
		h.logger.Error("package failed", "err", err)
		return h.tg.SendText(chatID, "❌ "+pipeline.UserMessage(err))
	}
	return h.tg.SendDocument(chatID, pack.FileName, zip, "📦 Your story with all illustrations")
}
