package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"time"

	"dcache-admin/internal/client"
	"dcache-admin/internal/logger"
	"dcache-admin/internal/metrics"
	"dcache-admin/internal/model"
	"dcache-admin/internal/pipeline"

	"go.uber.org/zap"
)

const eventType = "inotify"

// ResubscribePolicy selects the paths subscribed on a fresh channel after
// the previous one was abandoned.
type ResubscribePolicy string

const (
	// ResubscribeAll subscribes every path watched so far, including the
	// directories created while the previous channel was live.
	ResubscribeAll ResubscribePolicy = "all"
	// ResubscribeDiscovered subscribes only the initially discovered paths.
	ResubscribeDiscovered ResubscribePolicy = "discovered"
)

func ParseResubscribePolicy(s string) (ResubscribePolicy, error) {
	switch p := ResubscribePolicy(s); p {
	case ResubscribeAll, ResubscribeDiscovered:
		return p, nil
	case "":
		return ResubscribeAll, nil
	default:
		return "", fmt.Errorf("unknown resubscribe policy %q", s)
	}
}

var errStreamClosed = errors.New("event stream closed by server")

// EventsAPI is the part of the events service the watcher needs.
// *client.EventsService satisfies it.
type EventsAPI interface {
	Register(ctx context.Context, body any) (*client.Channel, error)
	Subscribe(ctx context.Context, channelID, eventType string, selector any) (string, error)
	Stream(ctx context.Context, location string) (*client.EventStream, error)
	DeleteChannel(ctx context.Context, id string) error
}

// Reporter is told about channel and watch changes.
type Reporter interface {
	ChannelRegistered(location string)
	WatchesChanged(n int)
}

type nopReporter struct{}

func (nopReporter) ChannelRegistered(string) {}
func (nopReporter) WatchesChanged(int)       {}

type WatcherConfig struct {
	ClientID       string
	FTSEndpoint    string
	Policy         ResubscribePolicy
	ReconnectDelay time.Duration
	CloseAbandoned bool
	Ignore         *pipeline.Matcher
	Reporter       Reporter
}

// Watcher keeps a channel with one inotify subscription per watched
// directory and turns the events into transfer requests. When the stream
// or a subscription fails the channel is abandoned and a new one is set up
// from scratch.
type Watcher struct {
	events     EventsAPI
	translator *Translator
	queue      *Queue
	watches    *WatchSet
	cfg        WatcherConfig

	discovered []string
	paths      []string
	// lastEvent is the id of the last event read from the current stream.
	lastEvent string
}

func NewWatcher(events EventsAPI, translator *Translator, queue *Queue, watches *WatchSet, discovered []string, cfg WatcherConfig) *Watcher {
	if cfg.Policy == "" {
		cfg.Policy = ResubscribeAll
	}
	if cfg.Reporter == nil {
		cfg.Reporter = nopReporter{}
	}

	return &Watcher{
		events:     events,
		translator: translator,
		queue:      queue,
		watches:    watches,
		cfg:        cfg,
		discovered: slices.Clone(discovered),
		paths:      slices.Clone(discovered),
	}
}

// Run loops register, subscribe and stream until ctx ends. It only returns
// an error when a channel cannot be registered.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		ch, err := w.register(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		err = w.consume(ctx, ch)
		w.abandon(ctx, ch)

		if ctx.Err() != nil {
			return nil
		}

		metrics.Reconnects.Inc()
		logger.Log.Error("channel lost, registering a new one",
			zap.String("channel", ch.Location),
			zap.String("last_event", w.lastEvent),
			zap.Error(err))

		if w.cfg.Policy == ResubscribeDiscovered {
			w.paths = slices.Clone(w.discovered)
		}

		if err := sleep(ctx, w.cfg.ReconnectDelay); err != nil {
			return nil
		}
	}
}

func (w *Watcher) register(ctx context.Context) (*client.Channel, error) {
	var body any
	if w.cfg.ClientID != "" {
		body = client.RegisterRequest{ClientID: w.cfg.ClientID}
	}

	ch, err := w.events.Register(ctx, body)
	if err != nil {
		return nil, err
	}

	w.watches.Reset()
	metrics.Watches.Set(0)
	w.cfg.Reporter.ChannelRegistered(ch.Location)
	w.cfg.Reporter.WatchesChanged(0)

	logger.Log.Info("channel registered",
		zap.String("channel", ch.Location))

	return ch, nil
}

func (w *Watcher) consume(ctx context.Context, ch *client.Channel) error {
	w.lastEvent = ""

	for _, p := range w.paths {
		if err := w.subscribe(ctx, ch, p); err != nil {
			return err
		}
	}

	stream, err := w.events.Stream(ctx, ch.Location)
	if err != nil {
		return err
	}

	defer func() {
		w.lastEvent = stream.LastID()
		_ = stream.Close()
	}()

	logger.Log.Info("watching namespace",
		zap.String("channel", ch.Location),
		zap.Int("watches", w.watches.Len()))

	for {
		ev, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errStreamClosed
			}
			return fmt.Errorf("failed to read event stream: %w", err)
		}

		if err := w.handle(ctx, ch, ev.ID, ev.Type, ev.Data); err != nil {
			return err
		}
	}
}

type inotifyMessage struct {
	Event *struct {
		Mask []string `json:"mask"`
		Name string   `json:"name"`
	} `json:"event"`
	Subscription string `json:"subscription"`
}

func (w *Watcher) handle(ctx context.Context, ch *client.Channel, id, typ, data string) error {
	var msg inotifyMessage
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		logger.Log.Warn("undecodable event",
			zap.String("id", id),
			zap.String("type", typ),
			zap.Error(err))
		return nil
	}
	if msg.Event == nil {
		logger.Log.Debug("ignoring event",
			zap.String("type", typ),
			zap.String("data", data))
		metrics.EventsTotal.WithLabelValues("ignored").Inc()
		return nil
	}

	ev := model.WatchEvent{
		ID:           id,
		Type:         typ,
		Mask:         msg.Event.Mask,
		Name:         msg.Event.Name,
		Subscription: msg.Subscription,
	}

	logger.Log.Debug("event received",
		zap.String("id", ev.ID),
		zap.Strings("mask", ev.Mask),
		zap.String("name", ev.Name),
		zap.String("subscription", ev.Subscription))

	switch {
	case ev.IsCloseWrite():
		return w.fileClosed(ev)
	case ev.IsDirCreate():
		return w.dirCreated(ctx, ch, ev)
	default:
		metrics.EventsTotal.WithLabelValues("ignored").Inc()
		return nil
	}
}

func (w *Watcher) fileClosed(ev model.WatchEvent) error {
	watched, ok := w.lookup(ev)
	if !ok {
		return nil
	}
	metrics.EventsTotal.WithLabelValues("close_write").Inc()

	full := path.Join(watched, ev.Name)
	if w.cfg.Ignore.ShouldIgnore(ev.Name) {
		logger.Log.Debug("ignoring file",
			zap.String("path", full))
		return nil
	}

	src, dst, err := w.translator.Translate(watched, ev.Name)
	if err != nil {
		logger.Log.Error("failed to translate path",
			zap.String("path", full),
			zap.Error(err))
		return nil
	}

	req := model.NewTransferRequest(src, dst, w.cfg.FTSEndpoint)
	if err := w.queue.Put(req); err != nil {
		return err
	}
	metrics.TransfersEnqueued.Inc()

	logger.Log.Info("new file detected",
		zap.String("transfer", req.ID),
		zap.String("src", src),
		zap.String("dst", dst))

	return nil
}

func (w *Watcher) dirCreated(ctx context.Context, ch *client.Channel, ev model.WatchEvent) error {
	watched, ok := w.lookup(ev)
	if !ok {
		return nil
	}
	metrics.EventsTotal.WithLabelValues("dir_create").Inc()

	dir := path.Join(watched, ev.Name)
	if w.cfg.Ignore.ShouldIgnore(ev.Name) {
		logger.Log.Debug("ignoring directory",
			zap.String("path", dir))
		return nil
	}

	logger.Log.Info("new directory detected",
		zap.String("path", dir))

	if err := w.subscribe(ctx, ch, dir); err != nil {
		return err
	}
	if !slices.Contains(w.paths, dir) {
		w.paths = append(w.paths, dir)
	}

	return nil
}

func (w *Watcher) lookup(ev model.WatchEvent) (string, bool) {
	watched, ok := w.watches.Lookup(ev.Subscription)
	if !ok {
		metrics.EventsTotal.WithLabelValues("unknown").Inc()
		logger.Log.Warn("event for unknown subscription",
			zap.String("subscription", ev.Subscription),
			zap.String("name", ev.Name))
	}
	return watched, ok
}

func (w *Watcher) subscribe(ctx context.Context, ch *client.Channel, p string) error {
	sub, err := w.events.Subscribe(ctx, ch.ID, eventType, map[string]string{"path": p})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", p, err)
	}

	w.watches.Add(sub, p)
	n := w.watches.Len()
	metrics.Watches.Set(float64(n))
	w.cfg.Reporter.WatchesChanged(n)

	logger.Log.Debug("watch added",
		zap.String("path", p),
		zap.String("subscription", sub))

	return nil
}

// abandon deletes the channel so the server stops buffering events for it.
func (w *Watcher) abandon(ctx context.Context, ch *client.Channel) {
	if !w.cfg.CloseAbandoned {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := w.events.DeleteChannel(ctx, ch.ID); err != nil {
		logger.Log.Debug("failed to delete abandoned channel",
			zap.String("channel", ch.Location),
			zap.Error(err))
	}
}
