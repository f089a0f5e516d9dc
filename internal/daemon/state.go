package daemon

import (
	"sync"
	"time"

	"dcache-admin/internal/model"
)

// SyncState tracks a running sync for the status endpoint.
type SyncState struct {
	mu          sync.RWMutex
	source      string
	destination string
	fts         string
	channel     string
	watches     int
	reconnects  int
	startedAt   time.Time
	submitted   int
	dropped     int
	failed      int
	lastSubmit  *time.Time
	queueDepth  func() int
}

func NewSyncState(source, destination, fts string, queueDepth func() int) *SyncState {
	return &SyncState{
		source:      source,
		destination: destination,
		fts:         fts,
		startedAt:   time.Now(),
		queueDepth:  queueDepth,
	}
}

func (s *SyncState) ChannelRegistered(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel != "" {
		s.reconnects++
	}
	s.channel = location
}

func (s *SyncState) WatchesChanged(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watches = n
}

func (s *SyncState) Record(result model.TransferResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch result.Status {
	case model.TransferSubmitted:
		s.submitted++
		s.lastSubmit = new(time.Now())
	case model.TransferDropped:
		s.dropped++
	default:
		s.failed++
	}
}

func (s *SyncState) Snapshot() model.SyncSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.SyncSnapshot{
		Source:      s.source,
		Destination: s.destination,
		FTSEndpoint: s.fts,
		Channel:     s.channel,
		Watches:     s.watches,
		Reconnects:  s.reconnects,
		StartedAt:   s.startedAt,
		Submitted:   s.submitted,
		Dropped:     s.dropped,
		Failed:      s.failed,
		LastSubmit:  s.lastSubmit,
	}
	if s.queueDepth != nil {
		snap.QueueDepth = s.queueDepth()
	}

	return snap
}
