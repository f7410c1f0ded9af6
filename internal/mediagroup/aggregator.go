// Package mediagroup collapses Telegram albums. Photos sharing a media
// group id arrive as separate updates; the aggregator waits for the burst
// to settle and hands over the whole album once.
package mediagroup

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	UserID       int64
	Username     string
	MessageID    int
	MediaGroupID string
	Caption      string
	FileID       string
}

type Album struct {
	ChatID   int64
	UserID   int64
	Username string
	Caption  string
	// Items are ordered by message id.
	Items []Item
}

// First is the photo the user sent first. Stories are built from it alone.
func (a Album) First() Item {
	if len(a.Items) == 0 {
		return Item{}
	}
	return a.Items[0]
}

// Ignored reports how many photos beyond the first were received.
func (a Album) Ignored() int {
	if len(a.Items) <= 1 {
		return 0
	}
	return len(a.Items) - 1
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Album)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Album)
	pending  map[string]*pendingAlbum
	stopped  bool
}

type pendingAlbum struct {
	album Album
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		pending:  make(map[string]*pendingAlbum),
	}
}

// Add buffers item and restarts the album's debounce timer. Items without
// a media group id or file id are ignored.
func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.FileID == "" {
		return
	}

	key := albumKey(item.ChatID, item.MediaGroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}

	pa, ok := a.pending[key]
	if !ok {
		pa = &pendingAlbum{album: Album{
			ChatID:   item.ChatID,
			UserID:   item.UserID,
			Username: item.Username,
		}}
		a.pending[key] = pa
	}
	pa.album.Items = append(pa.album.Items, item)
	if item.Caption != "" && pa.album.Caption == "" {
		pa.album.Caption = item.Caption
	}

	if pa.timer != nil {
		pa.timer.Stop()
	}
	pa.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
}

func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Stop cancels every pending album without flushing it.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	for key, pa := range a.pending {
		if pa.timer != nil {
			pa.timer.Stop()
		}
		delete(a.pending, key)
	}
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pa, ok := a.pending[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.pending, key)
	album := pa.album
	onFlush := a.onFlush
	a.mu.Unlock()

	sort.SliceStable(album.Items, func(i, j int) bool {
		return album.Items[i].MessageID < album.Items[j].MessageID
	})

	if onFlush != nil {
		onFlush(album)
	}
}

func albumKey(chatID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", chatID, mediaGroupID)
}
