// Package syncer mirrors a dCache namespace to another storage: it watches
// directories through the frontend's inotify events and submits an FTS
// transfer for every file written below them.
package syncer

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"dcache-admin/internal/client"
	"dcache-admin/internal/logger"
	"dcache-admin/internal/model"
	"dcache-admin/internal/pipeline"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// RootPath is the namespace path the door of Source exports.
	RootPath    string
	Source      string
	Destination string
	FTSEndpoint string
	Recursive   bool

	Workers        int
	Resubscribe    ResubscribePolicy
	ProbeAttempts  int
	ProbeBackoff   time.Duration
	ReconnectDelay time.Duration
	CloseAbandoned bool
	Ignore         []string
}

// HistoryStore persists transfer results.
type HistoryStore interface {
	Save(result model.TransferResult) error
}

// Recorder is told about every finished transfer.
type Recorder interface {
	Record(result model.TransferResult)
}

type Syncer struct {
	client     *client.Client
	opts       Options
	translator *Translator
	queue      *Queue
	watches    *WatchSet

	history   HistoryStore
	recorders []Recorder
	reporter  Reporter
}

func New(c *client.Client, opts Options) (*Syncer, error) {
	for name, v := range map[string]string{
		"root path":    opts.RootPath,
		"source":       opts.Source,
		"destination":  opts.Destination,
		"fts endpoint": opts.FTSEndpoint,
	} {
		if v == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	policy, err := ParseResubscribePolicy(string(opts.Resubscribe))
	if err != nil {
		return nil, err
	}
	opts.Resubscribe = policy

	translator, err := NewTranslator(opts.RootPath, opts.Source, opts.Destination)
	if err != nil {
		return nil, err
	}

	return &Syncer{
		client:     c,
		opts:       opts,
		translator: translator,
		queue:      NewQueue(),
		watches:    NewWatchSet(),
		reporter:   nopReporter{},
	}, nil
}

func (s *Syncer) SetHistory(h HistoryStore) {
	s.history = h
}

func (s *Syncer) AddRecorder(r Recorder) {
	s.recorders = append(s.recorders, r)
}

func (s *Syncer) SetReporter(r Reporter) {
	s.reporter = r
}

func (s *Syncer) QueueDepth() int {
	return s.queue.Len()
}

// Run discovers the directories to watch and keeps the sync going until ctx
// ends. Requests already queued are then still submitted before Run
// returns. Discovery and channel registration failures are returned.
func (s *Syncer) Run(ctx context.Context) error {
	src, err := url.Parse(s.opts.Source)
	if err != nil {
		return fmt.Errorf("invalid source url: %w", err)
	}

	paths, err := Discover(ctx, s.client.Namespace, s.opts.RootPath, src.Path, s.opts.Recursive)
	if err != nil {
		return fmt.Errorf("failed to discover directories: %w", err)
	}

	logger.Log.Info("directories discovered",
		zap.String("sync_root", s.translator.SyncRoot),
		zap.Int("count", len(paths)))

	hc := s.client.HTTPClient()
	results := make(chan model.TransferResult, s.opts.Workers+1)
	pool := NewPool(s.queue,
		NewProber(hc, s.opts.ProbeAttempts, s.opts.ProbeBackoff),
		NewFTS(hc),
		s.opts.Workers,
		results)

	watcher := NewWatcher(s.client.Events, s.translator, s.queue, s.watches, paths, WatcherConfig{
		ClientID:       uuid.NewString(),
		FTSEndpoint:    s.opts.FTSEndpoint,
		Policy:         s.opts.Resubscribe,
		ReconnectDelay: s.opts.ReconnectDelay,
		CloseAbandoned: s.opts.CloseAbandoned,
		Ignore:         pipeline.NewMatcher(s.opts.Ignore),
		Reporter:       s.reporter,
	})

	// Workers outlive ctx so queued requests are still submitted.
	var g errgroup.Group
	g.Go(func() error {
		defer close(results)
		return pool.Run(context.WithoutCancel(ctx))
	})
	g.Go(func() error {
		for result := range results {
			s.record(result)
		}
		return nil
	})

	werr := watcher.Run(ctx)

	logger.Log.Info("event consumer stopped, draining transfer queue",
		zap.Int("pending", s.queue.Len()))
	s.queue.Close()

	if err := g.Wait(); err != nil {
		return err
	}
	return werr
}

func (s *Syncer) record(result model.TransferResult) {
	if s.history != nil {
		if err := s.history.Save(result); err != nil {
			logger.Log.Warn("failed to save history",
				zap.String("transfer", result.Request.ID),
				zap.Error(err))
		}
	}

	for _, r := range s.recorders {
		r.Record(result)
	}
}
