package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cartoon-story-bot/internal/settings"
	"cartoon-story-bot/internal/telegram"
)

const genreCallbackPrefix = "genre:"

func (h *Handler) handleCommand(chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return h.tg.SendText(chatID, startText)
	case "help":
		return h.tg.SendText(chatID, helpText)
	case "genres", "genre":
		current := h.sessions.Settings(userID, username).Genre
		return h.tg.SendKeyboard(chatID, "Pick a genre for your next story:", genreKeyboard(current))
	case "settings":
		args := strings.TrimSpace(msg.CommandArguments())
		if args == "" {
			return h.tg.SendText(chatID, settingsText(h.sessions.Settings(userID, username)))
		}
		var rejected []string
		opts := h.sessions.Update(userID, username, func(o *settings.Options) {
			rejected = applySettings(o, args)
		})
		text := settingsText(opts)
		if len(rejected) > 0 {
			text = fmt.Sprintf("Ignored: %s\n\n%s", strings.Join(rejected, ", "), text)
		}
		return h.tg.SendText(chatID, text)
	case "reset":
		h.sessions.Reset(userID)
		return h.tg.SendText(chatID, "Settings restored to defaults.\n\n"+settingsText(h.sessions.Settings(userID, username)))
	default:
		return h.tg.SendText(chatID, "Unknown command. Try /help.")
	}
}

func (h *Handler) handleCallback(q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, genreCallbackPrefix) {
		h.tg.AnswerCallback(q.ID, "")
		return nil
	}

	key, genre, ok := settings.LookupGenre(strings.TrimPrefix(data, genreCallbackPrefix))
	if !ok {
		h.tg.AnswerCallback(q.ID, "Unknown genre")
		return nil
	}

	h.sessions.Update(q.From.ID, q.From.UserName, func(o *settings.Options) { o.Genre = key })
	h.tg.AnswerCallback(q.ID, genre.Name+" selected")
	return h.tg.SendText(q.Message.Chat.ID, fmt.Sprintf("Genre set to %s. Send a photo to begin!", genre.Name))
}

// applySettings applies every key=value token in args and returns the
// tokens it could not use.
func applySettings(opts *settings.Options, args string) []string {
	var rejected []string
	for _, tok := range strings.Fields(args) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || !settings.Apply(opts, key, value) {
			rejected = append(rejected, tok)
		}
	}
	return rejected
}

func genreKeyboard(current string) [][]telegram.Button {
	var rows [][]telegram.Button
	var row []telegram.Button
	for _, g := range settings.Genres() {
		label := g.Name
		if g.Key == current {
			label = "✅ " + label
		}
		row = append(row, telegram.Button{Text: label, Data: genreCallbackPrefix + g.Key})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}
