package notify

import (
	"context"
	"sync"

	"github.com/maheshrc27/colorpress/internal/transfer"
)

// LocalNotifier delivers events to subscribers in the same process.
type LocalNotifier struct {
	mu   sync.Mutex
	subs map[string]map[chan transfer.ThemeEvent]struct{}
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[string]map[chan transfer.ThemeEvent]struct{})}
}

func (n *LocalNotifier) Publish(_ context.Context, event transfer.ThemeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs[event.ThemeID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (n *LocalNotifier) Subscribe(_ context.Context, themeID string) (<-chan transfer.ThemeEvent, func(), error) {
	ch := make(chan transfer.ThemeEvent, subscriberBuffer)

	n.mu.Lock()
	if n.subs[themeID] == nil {
		n.subs[themeID] = make(map[chan transfer.ThemeEvent]struct{})
	}
	n.subs[themeID][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[themeID], ch)
			if len(n.subs[themeID]) == 0 {
				delete(n.subs, themeID)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}
