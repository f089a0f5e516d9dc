package syncer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"dcache-admin/internal/client"
)

type fakeSubscription struct {
	channel  string
	path     string
	location string
}

// fakeDCache serves the parts of the frontend the sync uses: channels,
// inotify subscriptions and the event stream. Every channel's stream is fed
// from a Go channel; closing it ends the stream.
type fakeDCache struct {
	srv *httptest.Server
	mux *http.ServeMux

	mu            sync.Mutex
	channels      []string
	subs          []fakeSubscription
	deleted       []string
	streams       map[string]chan string
	failRegister  bool
	failSubscribe map[string]int
	nextEvent     int
}

func newFakeDCache(t *testing.T) *fakeDCache {
	t.Helper()

	f := &fakeDCache{
		mux:           http.NewServeMux(),
		streams:       make(map[string]chan string),
		failSubscribe: make(map[string]int),
	}
	f.mux.HandleFunc("POST /api/v1/events/channels", f.handleRegister)
	f.mux.HandleFunc("GET /api/v1/events/channels/{id}", f.handleStream)
	f.mux.HandleFunc("DELETE /api/v1/events/channels/{id}", f.handleDelete)
	f.mux.HandleFunc("POST /api/v1/events/channels/{id}/subscriptions/{type}", f.handleSubscribe)

	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(func() {
		f.mu.Lock()
		for id, ch := range f.streams {
			close(ch)
			delete(f.streams, id)
		}
		f.mu.Unlock()
		f.srv.Close()
	})

	return f
}

func (f *fakeDCache) client() *client.Client {
	return client.NewWithHTTPClient(f.srv.URL, f.srv.Client())
}

func (f *fakeDCache) handleRegister(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failRegister {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	id := fmt.Sprintf("ch%d", len(f.channels)+1)
	f.channels = append(f.channels, id)
	f.streams[id] = make(chan string, 64)

	w.Header().Set("Location", f.srv.URL+"/api/v1/events/channels/"+id)
	w.WriteHeader(http.StatusCreated)
}

func (f *fakeDCache) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var selector struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&selector); err != nil || r.PathValue("type") != "inotify" {
		http.Error(w, "bad selector", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSubscribe[selector.Path] > 0 {
		f.failSubscribe[selector.Path]--
		http.Error(w, "no such directory", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	loc := fmt.Sprintf("%s/api/v1/events/channels/%s/subscriptions/inotify/s%d", f.srv.URL, id, len(f.subs)+1)
	f.subs = append(f.subs, fakeSubscription{channel: id, path: selector.Path, location: loc})

	w.Header().Set("Location", loc)
	w.WriteHeader(http.StatusCreated)
}

func (f *fakeDCache) handleDelete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeDCache) handleStream(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	frames, ok := f.streams[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher := w.(http.Flusher)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			_, _ = fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}
}

// subscription returns the location of the newest subscription of path on
// channel.
func (f *fakeDCache) subscription(channel, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.subs) - 1; i >= 0; i-- {
		if f.subs[i].channel == channel && f.subs[i].path == path {
			return f.subs[i].location
		}
	}
	return ""
}

func (f *fakeDCache) subscribedPaths(channel string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var paths []string
	for _, s := range f.subs {
		if s.channel == channel {
			paths = append(paths, s.path)
		}
	}
	return paths
}

func (f *fakeDCache) channelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.channels)
}

func (f *fakeDCache) deletedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// send pushes one inotify event on the stream of channel.
func (f *fakeDCache) send(channel, subscription, name string, mask ...string) {
	payload, _ := json.Marshal(map[string]any{
		"event":        map[string]any{"mask": mask, "name": name},
		"subscription": subscription,
	})
	f.sendRaw(channel, "inotify", string(payload))
}

func (f *fakeDCache) sendRaw(channel, typ, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextEvent++
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\nid: %d\n", typ, f.nextEvent)
	for line := range strings.SplitSeq(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	f.streams[channel] <- b.String()
}

// closeStream ends the event stream of channel as a server restart would.
func (f *fakeDCache) closeStream(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch, ok := f.streams[channel]; ok {
		close(ch)
		delete(f.streams, channel)
	}
}
