package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

type PoolsService struct {
	service
}

type MoversParams struct {
	Type         string `url:"type,omitempty"`
	Offset       int    `url:"offset,omitempty"`
	Limit        int    `url:"limit,omitempty"`
	PnfsID       string `url:"pnfsid,omitempty"`
	Queue        string `url:"queue,omitempty"`
	State        string `url:"state,omitempty"`
	Mode         string `url:"mode,omitempty"`
	Door         string `url:"door,omitempty"`
	StorageClass string `url:"storageClass,omitempty"`
	Sort         string `url:"sort,omitempty"`
}

type NearlineParams struct {
	Type         string `url:"type,omitempty"`
	Offset       int    `url:"offset,omitempty"`
	Limit        int    `url:"limit,omitempty"`
	PnfsID       string `url:"pnfsid,omitempty"`
	State        string `url:"state,omitempty"`
	StorageClass string `url:"storageClass,omitempty"`
	Sort         string `url:"sort,omitempty"`
}

type RestoresParams struct {
	Token  string `url:"token,omitempty"`
	Offset int    `url:"offset,omitempty"`
	Limit  int    `url:"limit,omitempty"`
	PnfsID string `url:"pnfsid,omitempty"`
	Subnet string `url:"subnet,omitempty"`
	Pool   string `url:"pool,omitempty"`
	Status string `url:"status,omitempty"`
	Sort   string `url:"sort,omitempty"`
}

// GetPools lists all pools with their group membership and links.
func (s *PoolsService) GetPools(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/pools", nil)
}

func (s *PoolsService) GetPool(ctx context.Context, pool string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/pools/"+seg(pool), nil)
}

// GetMovers lists the movers running on a pool.
func (s *PoolsService) GetMovers(ctx context.Context, pool string, params *MoversParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/pools/"+seg(pool)+"/movers", params)
}

// KillMovers kills one mover of a pool.
func (s *PoolsService) KillMovers(ctx context.Context, pool string, id int64) error {
	_, err := s.client.call(ctx, http.MethodDelete, "/pools/"+seg(pool)+"/movers/"+strconv.FormatInt(id, 10), nil, nil, nil)
	return err
}

func (s *PoolsService) GetQueueHistograms(ctx context.Context, pool string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/pools/"+seg(pool)+"/histograms/queues", nil)
}

func (s *PoolsService) GetFilesHistograms(ctx context.Context, pool string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/pools/"+seg(pool)+"/histograms/files", nil)
}

func (s *PoolsService) GetPoolUsage(ctx context.Context, pool string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/pools/"+seg(pool)+"/usage", nil)
}

// UpdateMode changes the mode of a pool. body carries "strict", "rdonly"
// and friends as accepted by the frontend.
func (s *PoolsService) UpdateMode(ctx context.Context, pool string, body any) (json.RawMessage, error) {
	return s.client.send(ctx, http.MethodPatch, "/pools/"+seg(pool)+"/usage/mode", nil, body)
}

// GetRepositoryInfoForFile describes the replica of a file on a pool.
func (s *PoolsService) GetRepositoryInfoForFile(ctx context.Context, pool, pnfsid string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/pools/"+seg(pool)+"/"+seg(pnfsid), nil)
}

// GetNearlineQueues lists the flush, stage and remove requests of a pool.
func (s *PoolsService) GetNearlineQueues(ctx context.Context, pool string, params *NearlineParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/pools/"+seg(pool)+"/nearline/queues", params)
}

// GetRestores lists restore operations of a snapshot.
func (s *PoolsService) GetRestores(ctx context.Context, params *RestoresParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/restores", params)
}
