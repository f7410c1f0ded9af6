// Package handlers routes Telegram updates: commands and settings
// callbacks update per-user preferences, photos start a story.
package handlers

import (
	"context"
	"image"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/mediagroup"
	"cartoon-story-bot/internal/pipeline"
	"cartoon-story-bot/internal/session"
	"cartoon-story-bot/internal/telegram"
)

// Messenger is the subset of the Telegram client the handler drives.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, rows [][]telegram.Button) error
	AnswerCallback(callbackID, text string)
	SendTyping(chatID int64)
	SendUploadingPhoto(chatID int64)
	SendPhoto(chatID int64, name string, data []byte, caption string) error
	SendDocument(chatID int64, name string, data []byte, caption string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type StoryService interface {
	CreateStory(ctx context.Context, ref image.Image, req pipeline.Request) (pipeline.Result, error)
	Package(result pipeline.Result) ([]byte, error)
}

type Options struct {
	Telegram Messenger
	Stories  StoryService
	Sessions *session.Store
	Logger   *slog.Logger
}

type Handler struct {
	tg         Messenger
	stories    StoryService
	sessions   *session.Store
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.Options{})
	}
	return &Handler{
		tg:       opts.Telegram,
		stories:  opts.Stories,
		sessions: sessions,
		logger:   logging.WithComponent(opts.Logger, "handlers"),
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(chatID, userID, username, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, userID, username, msg)
	}

	if msg.Document != nil {
		return h.tg.SendText(chatID, sendAsPhotoText)
	}

	if msg.Text != "" {
		return h.tg.SendText(chatID, photoPromptText)
	}

	return nil
}

// HandleAlbum runs one story for a flushed album using its first photo.
func (h *Handler) HandleAlbum(ctx context.Context, album mediagroup.Album) {
	first := album.First()
	if first.FileID == "" {
		return
	}
	if n := album.Ignored(); n > 0 {
		h.logger.Info("album received, using first photo", "chat_id", album.ChatID, "ignored", n)
	}
	if err := h.processPhoto(ctx, album.ChatID, album.UserID, album.Username, album.Caption, first.FileID); err != nil {
		h.logger.Error("album processing failed", "err", err)
	}
}

func (h *Handler) handlePhoto(ctx context.Context, chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	photo := msg.Photo[len(msg.Photo)-1]

	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			Username:     username,
			MessageID:    msg.MessageID,
			MediaGroupID: msg.MediaGroupID,
			Caption:      msg.Caption,
			FileID:       photo.FileID,
		})
		return nil
	}

	return h.processPhoto(ctx, chatID, userID, username, msg.Caption, photo.FileID)
}
