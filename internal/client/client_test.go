package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewWithHTTPClient(srv.URL+"/", srv.Client()), srv
}

func TestCallEncodesQueryAndBody(t *testing.T) {
	var gotQuery, gotBody, gotType string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/some/path", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	params := &BillingParams{Limit: 5, Sort: "date"}
	var out struct {
		OK bool `json:"ok"`
	}
	_, err := c.call(context.Background(), http.MethodPost, "/some/path", params, map[string]string{"a": "b"}, &out)
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Equal(t, "limit=5&sort=date", gotQuery)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"a":"b"}`, gotBody)
}

func TestCallNilParamsAddNoQuery(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	}))

	var params *TransfersParams
	_, err := c.Transfers.GetTransfers(context.Background(), params)
	require.NoError(t, err)
}

func TestCallAPIError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such file", http.StatusNotFound)
	}))

	_, err := c.Namespace.GetFileAttributes(context.Background(), "/missing", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.MethodGet, apiErr.Method)
	assert.Equal(t, "no such file", apiErr.Body)
	assert.Contains(t, apiErr.Error(), "404 Not Found")
}

func TestCallAcceptsAny2xx(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	out, err := c.Pools.UpdateMode(context.Background(), "pool1", map[string]string{"strict": "DISABLED"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCreateResolvesLocation(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/api/v1/events/channels/abc")
		w.WriteHeader(http.StatusCreated)
	}))

	loc, err := c.create(context.Background(), "/events/channels", nil)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/v1/events/channels/abc", loc)
}

func TestCreateWithoutLocation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	_, err := c.create(context.Background(), "/events/channels", nil)
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestServicePaths(t *testing.T) {
	var paths []string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath()+"?"+r.URL.RawQuery)
		_, _ = w.Write([]byte(`[]`))
	}))
	ctx := context.Background()

	_, err := c.Pools.GetMovers(ctx, "pool_1", &MoversParams{Sort: "door,startTime"})
	require.NoError(t, err)
	require.NoError(t, c.Pools.KillMovers(ctx, "pool_1", 42))
	_, err = c.PoolManager.Match(ctx, &MatchParams{Type: "READ", Store: "tape"})
	require.NoError(t, err)
	_, err = c.QoS.GetQueriedQosForDirectories(ctx, "disk+tape")
	require.NoError(t, err)
	_, err = c.Space.GetLinkGroups(ctx, nil)
	require.NoError(t, err)
	_, err = c.Billing.GetReads(ctx, "0000ABC", &BillingParams{After: "2020-01-01"})
	require.NoError(t, err)
	addrs, err := c.Cells.GetAddresses(ctx)
	require.NoError(t, err)
	assert.Empty(t, addrs)
	require.NoError(t, c.Alarms.DeleteAlarmEntry(ctx, "k1"))

	assert.Equal(t, []string{
		"GET /api/v1/pools/pool_1/movers?sort=door%2CstartTime",
		"DELETE /api/v1/pools/pool_1/movers/42?",
		"GET /api/v1/pool-preferences?store=tape&type=READ",
		"GET /api/v1/qos-management/qos/directory/disk+tape?",
		"GET /api/v1/space/linkgroups?",
		"GET /api/v1/billing/reads/0000ABC?after=2020-01-01",
		"GET /api/v1/cells/addresses?",
		"DELETE /api/v1/alarms/logentries/k1?",
	}, paths)
}

func TestNamespaceEscapesSegments(t *testing.T) {
	var got string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.EscapedPath() + "?" + r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(FileAttributes{
			FileType: FileTypeDir,
			Children: []FileAttributes{
				{FileName: "a b", FileType: FileTypeDir},
				{FileName: "f", FileType: "REGULAR"},
			},
		})
	}))

	attrs, err := c.Namespace.GetFileAttributes(context.Background(), "/data/my dir/", &FileAttributesParams{Children: true})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/namespace/data/my%20dir?children=true", got)
	assert.True(t, attrs.IsDir())
	require.Len(t, attrs.Children, 2)
	assert.True(t, attrs.Children[0].IsDir())
	assert.False(t, attrs.Children[1].IsDir())
}

func TestBringOnline(t *testing.T) {
	var body map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/namespace/tape/file", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))

	out, err := c.Namespace.BringOnline(context.Background(), "/tape/file")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"action": "qos", "target": "disk+tape"}, body)
	assert.JSONEq(t, `{"status":"success"}`, string(out))
}
