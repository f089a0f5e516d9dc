package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"dcache-admin/internal/db"
	"dcache-admin/internal/model"
	"dcache-admin/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func transfer(status model.TransferStatus, err error) model.TransferResult {
	return model.TransferResult{
		Request: model.NewTransferRequest("https://door/data/f", "https://dest/f", "https://fts"),
		Status:  status,
		Err:     err,
	}
}

func TestSyncStateSnapshot(t *testing.T) {
	state := NewSyncState("https://door/data", "https://dest/store", "https://fts", func() int { return 3 })

	state.ChannelRegistered("https://door/api/v1/events/channels/ch1")
	state.WatchesChanged(4)
	state.ChannelRegistered("https://door/api/v1/events/channels/ch2")
	state.Record(transfer(model.TransferSubmitted, nil))
	state.Record(transfer(model.TransferDropped, errors.New("gone")))
	state.Record(transfer(model.TransferFailed, errors.New("403")))

	snap := state.Snapshot()
	assert.Equal(t, "https://door/api/v1/events/channels/ch2", snap.Channel)
	assert.Equal(t, 1, snap.Reconnects)
	assert.Equal(t, 4, snap.Watches)
	assert.Equal(t, 3, snap.QueueDepth)
	assert.Equal(t, 1, snap.Submitted)
	assert.Equal(t, 1, snap.Dropped)
	assert.Equal(t, 1, snap.Failed)
	assert.NotNil(t, snap.LastSubmit)
}

func TestStatusWithoutHistory(t *testing.T) {
	state := NewSyncState("https://door/data", "https://dest/store", "https://fts", nil)
	s := NewServer(state, nil, 0)

	rec := do(t, s, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Sync    model.SyncSnapshot `json:"sync"`
		History *repository.Stats  `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://door/data", body.Sync.Source)
	assert.Nil(t, body.History)

	rec = do(t, s, http.MethodGet, "/history")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "history.db")))
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewHistoryRepository()
	require.NoError(t, repo.Save(transfer(model.TransferSubmitted, nil)))
	require.NoError(t, repo.Save(transfer(model.TransferDropped, errors.New("source unavailable"))))

	s := NewServer(NewSyncState("src", "dst", "fts", nil), repo, 0)

	rec := do(t, s, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		History repository.Stats `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, repository.Stats{Total: 2, Submitted: 1, Dropped: 1}, status.History)

	rec = do(t, s, http.MethodGet, "/history?n=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []model.History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = do(t, s, http.MethodGet, "/history?failed=true")
	require.Equal(t, http.StatusOK, rec.Code)
	var failed []model.History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failed))
	require.Len(t, failed, 1)
	assert.Equal(t, "source unavailable", failed[0].ErrMsg)
}

func TestStopAndMetrics(t *testing.T) {
	s := NewServer(NewSyncState("src", "dst", "fts", nil), nil, 0)

	rec := do(t, s, http.MethodPost, "/stop")
	assert.Equal(t, http.StatusOK, rec.Code)
	// A second request must not block.
	rec = do(t, s, http.MethodPost, "/stop")
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-s.StopCh():
	default:
		t.Fatal("stop was not signalled")
	}

	rec = do(t, s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
