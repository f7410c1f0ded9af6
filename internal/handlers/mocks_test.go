package handlers

import (
	"context"
	"image"
	"sync"

	"cartoon-story-bot/internal/pipeline"
	"cartoon-story-bot/internal/telegram"
)

type sent struct {
	kind    string
	chatID  int64
	text    string
	name    string
	data    []byte
	buttons [][]telegram.Button
}

type fakeMessenger struct {
	mu        sync.Mutex
	sent      []sent
	callbacks []string

	downloadFunc func(ctx context.Context, fileID string) ([]byte, error)
}

func (f *fakeMessenger) record(s sent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, s)
}

func (f *fakeMessenger) SendText(chatID int64, text string) error {
	f.record(sent{kind: "text", chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) SendKeyboard(chatID int64, text string, rows [][]telegram.Button) error {
	f.record(sent{kind: "keyboard", chatID: chatID, text: text, buttons: rows})
	return nil
}

func (f *fakeMessenger) AnswerCallback(callbackID, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, text)
}

func (f *fakeMessenger) SendTyping(int64)         {}
func (f *fakeMessenger) SendUploadingPhoto(int64) {}

func (f *fakeMessenger) SendPhoto(chatID int64, name string, data []byte, caption string) error {
	f.record(sent{kind: "photo", chatID: chatID, name: name, data: data, text: caption})
	return nil
}

func (f *fakeMessenger) SendDocument(chatID int64, name string, data []byte, caption string) error {
	f.record(sent{kind: "document", chatID: chatID, name: name, data: data, text: caption})
	return nil
}

func (f *fakeMessenger) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	return f.downloadFunc(ctx, fileID)
}

func (f *fakeMessenger) messages() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sent, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeStories struct {
	createFunc  func(ctx context.Context, ref image.Image, req pipeline.Request) (pipeline.Result, error)
	packageFunc func(result pipeline.Result) ([]byte, error)
}

func (f *fakeStories) CreateStory(ctx context.Context, ref image.Image, req pipeline.Request) (pipeline.Result, error) {
	return f.createFunc(ctx, ref, req)
}

func (f *fakeStories) Package(result pipeline.Result) ([]byte, error) {
	return f.packageFunc(result)
}
