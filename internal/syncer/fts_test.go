package syncer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dcache-admin/internal/client"
	"dcache-admin/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFTSSubmit(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"job_id":"6b3a9b1e-1c2d-11ee-9f2c-fa163e1b2c3d"}`))
	}))
	defer srv.Close()

	req := model.NewTransferRequest("https://door/data/f", "https://dest/store/f", srv.URL+"/")
	jobID, err := NewFTS(srv.Client()).Submit(context.Background(), req, Checksum{Adler32: "deadbeef", Size: 1024})
	require.NoError(t, err)

	assert.Equal(t, "6b3a9b1e-1c2d-11ee-9f2c-fa163e1b2c3d", jobID)
	assert.JSONEq(t, `{
		"files": [{
			"sources": ["https://door/data/f"],
			"destinations": ["https://dest/store/f"],
			"filesize": 1024,
			"checksum": "adler32:deadbeef"
		}],
		"params": {"verify_checksum": true}
	}`, body)
}

func TestFTSSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"403 Forbidden"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	req := model.NewTransferRequest("https://door/f", "https://dest/f", srv.URL)
	_, err := NewFTS(srv.Client()).Submit(context.Background(), req, Checksum{Adler32: "1", Size: 1})

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
