package syncer

import "sync"

// WatchSet maps subscription locations to the namespace path they watch.
// It belongs to one channel and is reset when a new channel is registered.
type WatchSet struct {
	mu      sync.RWMutex
	watches map[string]string
}

func NewWatchSet() *WatchSet {
	return &WatchSet{watches: make(map[string]string)}
}

func (w *WatchSet) Add(subscription, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watches[subscription] = path
}

func (w *WatchSet) Lookup(subscription string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.watches[subscription]
	return p, ok
}

func (w *WatchSet) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.watches)
}

func (w *WatchSet) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.watches)
}
