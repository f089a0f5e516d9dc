package syncer

import (
	"context"
	"testing"
	"time"

	"dcache-admin/internal/logger"
	"dcache-admin/internal/model"
	"dcache-admin/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	waitFor = 5 * time.Second
	tick    = 10 * time.Millisecond
)

var testDiscovered = []string{"/pnfs/desy.de/data", "/pnfs/desy.de/data/run1"}

type watcherHarness struct {
	fake    *fakeDCache
	queue   *Queue
	watches *WatchSet
	watcher *Watcher
	cancel  context.CancelFunc
	done    chan error
}

func startWatcher(t *testing.T, fake *fakeDCache, cfg WatcherConfig) *watcherHarness {
	t.Helper()

	tr, err := NewTranslator(testRootPath, testSource, testDestination)
	require.NoError(t, err)

	if cfg.FTSEndpoint == "" {
		cfg.FTSEndpoint = "https://fts.example.org:8446"
	}

	h := &watcherHarness{
		fake:    fake,
		queue:   NewQueue(),
		watches: NewWatchSet(),
		done:    make(chan error, 1),
	}
	h.watcher = NewWatcher(fake.client().Events, tr, h.queue, h.watches, testDiscovered, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.watcher.Run(ctx) }()

	t.Cleanup(func() { h.stop(t) })
	return h
}

func (h *watcherHarness) stop(t *testing.T) {
	t.Helper()

	if h.cancel == nil {
		return
	}
	h.cancel()
	h.cancel = nil

	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func (h *watcherHarness) waitSubscribed(t *testing.T, channel string, n int) {
	t.Helper()

	require.Eventually(t, func() bool {
		return len(h.fake.subscribedPaths(channel)) == n
	}, waitFor, tick, "waiting for %d subscriptions on %s", n, channel)
}

func (h *watcherHarness) next(t *testing.T) model.TransferRequest {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	req, err := h.queue.Get(ctx)
	require.NoError(t, err)
	h.queue.Done()
	return req
}

func TestWatcherSubscribesDiscoveredPaths(t *testing.T) {
	fake := newFakeDCache(t)
	h := startWatcher(t, fake, WatcherConfig{})

	h.waitSubscribed(t, "ch1", 2)
	assert.Equal(t, testDiscovered, fake.subscribedPaths("ch1"))
	assert.Equal(t, 2, h.watches.Len())
}

func TestWatcherEnqueuesClosedFile(t *testing.T) {
	fake := newFakeDCache(t)
	h := startWatcher(t, fake, WatcherConfig{})
	h.waitSubscribed(t, "ch1", 2)

	watched := "/pnfs/desy.de/data/run1"
	fake.send("ch1", fake.subscription("ch1", watched), "foo.dat", model.MaskCloseWrite)

	req := h.next(t)

	tr, err := NewTranslator(testRootPath, testSource, testDestination)
	require.NoError(t, err)
	src, dst, err := tr.Translate(watched, "foo.dat")
	require.NoError(t, err)

	assert.Equal(t, src, req.SourceURL)
	assert.Equal(t, dst, req.DestinationURL)
	assert.Equal(t, "https://door.example.org:2880/data/run1/foo.dat", req.SourceURL)
	assert.Equal(t, "https://dest.example.org/store/run1/foo.dat", req.DestinationURL)
	assert.Equal(t, "https://fts.example.org:8446", req.FTSEndpoint)
}

func TestWatcherDoesNotDeduplicate(t *testing.T) {
	fake := newFakeDCache(t)
	h := startWatcher(t, fake, WatcherConfig{})
	h.waitSubscribed(t, "ch1", 2)

	sub := fake.subscription("ch1", "/pnfs/desy.de/data")
	fake.send("ch1", sub, "foo.dat", model.MaskCloseWrite)
	fake.send("ch1", sub, "foo.dat", model.MaskCloseWrite)

	a := h.next(t)
	b := h.next(t)

	assert.Equal(t, a.SourceURL, b.SourceURL)
	assert.Equal(t, a.DestinationURL, b.DestinationURL)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestWatcherFollowsNewDirectory(t *testing.T) {
	fake := newFakeDCache(t)
	h := startWatcher(t, fake, WatcherConfig{})
	h.waitSubscribed(t, "ch1", 2)

	fake.send("ch1", fake.subscription("ch1", "/pnfs/desy.de/data"), "run2", model.MaskCreate, model.MaskIsDir)

	h.waitSubscribed(t, "ch1", 3)
	assert.Equal(t, "/pnfs/desy.de/data/run2", fake.subscribedPaths("ch1")[2])
	assert.Eventually(t, func() bool { return h.watches.Len() == 3 }, waitFor, tick)

	fake.send("ch1", fake.subscription("ch1", "/pnfs/desy.de/data/run2"), "bar.dat", model.MaskCloseWrite)

	req := h.next(t)
	assert.Equal(t, "https://door.example.org:2880/data/run2/bar.dat", req.SourceURL)
	assert.Equal(t, "https://dest.example.org/store/run2/bar.dat", req.DestinationURL)
}

func TestWatcherIgnoresOtherEvents(t *testing.T) {
	fake := newFakeDCache(t)
	h := startWatcher(t, fake, WatcherConfig{Ignore: pipeline.NewMatcher([]string{"*.part"})})
	h.waitSubscribed(t, "ch1", 2)

	sub := fake.subscription("ch1", "/pnfs/desy.de/data")
	fake.send("ch1", sub, "a.dat", model.MaskCreate)
	fake.send("ch1", sub, "a.dat", "IN_MODIFY")
	fake.send("ch1", sub, "dir", model.MaskCreate, model.MaskIsDir, "IN_EXTRA")
	fake.send("ch1", sub, "upload.part", model.MaskCloseWrite)
	fake.send("ch1", "https://elsewhere/subscriptions/inotify/s99", "x.dat", model.MaskCloseWrite)
	fake.sendRaw("ch1", "SYSTEM", `{"type":"NEW_SUBSCRIPTION"}`)
	fake.sendRaw("ch1", "inotify", `not json`)
	fake.send("ch1", sub, "last.dat", model.MaskCloseWrite)

	req := h.next(t)
	assert.Equal(t, "https://door.example.org:2880/data/last.dat", req.SourceURL)
	assert.Equal(t, 0, h.queue.Len())
	assert.Len(t, fake.subscribedPaths("ch1"), 2)
	assert.Equal(t, 1, fake.channelCount())
}

func TestWatcherReconnectResubscribesDiscovered(t *testing.T) {
	fake := newFakeDCache(t)
	h := startWatcher(t, fake, WatcherConfig{Policy: ResubscribeDiscovered, CloseAbandoned: true})
	h.waitSubscribed(t, "ch1", 2)

	fake.send("ch1", fake.subscription("ch1", "/pnfs/desy.de/data"), "run2", model.MaskCreate, model.MaskIsDir)
	h.waitSubscribed(t, "ch1", 3)

	fake.closeStream("ch1")

	require.Eventually(t, func() bool { return fake.channelCount() == 2 }, waitFor, tick)
	h.waitSubscribed(t, "ch2", 2)
	assert.Equal(t, testDiscovered, fake.subscribedPaths("ch2"))
	assert.Eventually(t, func() bool { return h.watches.Len() == 2 }, waitFor, tick)
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"ch1"}, fake.deletedChannels())
	}, waitFor, tick)

	// The old subscriptions are gone, the new ones work.
	fake.send("ch2", fake.subscription("ch1", "/pnfs/desy.de/data"), "stale.dat", model.MaskCloseWrite)
	fake.send("ch2", fake.subscription("ch2", "/pnfs/desy.de/data/run1"), "fresh.dat", model.MaskCloseWrite)

	req := h.next(t)
	assert.Equal(t, "https://door.example.org:2880/data/run1/fresh.dat", req.SourceURL)
}

func TestWatcherReconnectResubscribesAll(t *testing.T) {
	fake := newFakeDCache(t)
	h := startWatcher(t, fake, WatcherConfig{Policy: ResubscribeAll})
	h.waitSubscribed(t, "ch1", 2)

	fake.send("ch1", fake.subscription("ch1", "/pnfs/desy.de/data"), "run2", model.MaskCreate, model.MaskIsDir)
	h.waitSubscribed(t, "ch1", 3)

	fake.closeStream("ch1")

	require.Eventually(t, func() bool { return fake.channelCount() == 2 }, waitFor, tick)
	h.waitSubscribed(t, "ch2", 3)
	assert.Equal(t, append(append([]string(nil), testDiscovered...), "/pnfs/desy.de/data/run2"), fake.subscribedPaths("ch2"))
	assert.Empty(t, fake.deletedChannels())

	fake.send("ch2", fake.subscription("ch2", "/pnfs/desy.de/data/run2"), "bar.dat", model.MaskCloseWrite)
	req := h.next(t)
	assert.Equal(t, "https://door.example.org:2880/data/run2/bar.dat", req.SourceURL)
}

func TestWatcherLogsLastEventOnReconnect(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	fake := newFakeDCache(t)
	h := startWatcher(t, fake, WatcherConfig{})
	h.waitSubscribed(t, "ch1", 2)

	fake.send("ch1", fake.subscription("ch1", "/pnfs/desy.de/data"), "a.dat", model.MaskCloseWrite)
	fake.send("ch1", fake.subscription("ch1", "/pnfs/desy.de/data"), "b.dat", model.MaskCloseWrite)
	h.next(t)
	h.next(t)

	fake.closeStream("ch1")

	require.Eventually(t, func() bool {
		return logs.FilterMessage("channel lost, registering a new one").Len() == 1
	}, waitFor, tick)

	entry := logs.FilterMessage("channel lost, registering a new one").All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "2", fields["last_event"])
	assert.Contains(t, fields["channel"], "/api/v1/events/channels/ch1")
}

func TestWatcherSubscribeFailureRestartsCycle(t *testing.T) {
	fake := newFakeDCache(t)
	fake.failSubscribe["/pnfs/desy.de/data/run1"] = 1

	h := startWatcher(t, fake, WatcherConfig{ReconnectDelay: time.Millisecond})

	require.Eventually(t, func() bool { return fake.channelCount() == 2 }, waitFor, tick)
	h.waitSubscribed(t, "ch2", 2)
	assert.Equal(t, []string{"/pnfs/desy.de/data"}, fake.subscribedPaths("ch1"))
}

func TestWatcherRegisterFailureIsFatal(t *testing.T) {
	fake := newFakeDCache(t)
	fake.failRegister = true

	tr, err := NewTranslator(testRootPath, testSource, testDestination)
	require.NoError(t, err)
	w := NewWatcher(fake.client().Events, tr, NewQueue(), NewWatchSet(), testDiscovered, WatcherConfig{})

	err = w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestWatcherStopsOnCancel(t *testing.T) {
	fake := newFakeDCache(t)
	h := startWatcher(t, fake, WatcherConfig{})
	h.waitSubscribed(t, "ch1", 2)

	h.stop(t)
	assert.Equal(t, 1, fake.channelCount())
}

func TestParseResubscribePolicy(t *testing.T) {
	p, err := ParseResubscribePolicy("")
	require.NoError(t, err)
	assert.Equal(t, ResubscribeAll, p)

	p, err = ParseResubscribePolicy("discovered")
	require.NoError(t, err)
	assert.Equal(t, ResubscribeDiscovered, p)

	_, err = ParseResubscribePolicy("some")
	assert.Error(t, err)
}
