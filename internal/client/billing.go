package client

import (
	"context"
	"encoding/json"
)

// BillingService covers /billing, the per-file transfer records.
type BillingService struct {
	service
}

// BillingParams filters billing records. Before and After are datestamps
// understood by the frontend. Sort defaults to "date" on the server.
type BillingParams struct {
	Before     string `url:"before,omitempty"`
	After      string `url:"after,omitempty"`
	Limit      int    `url:"limit,omitempty"`
	Offset     int    `url:"offset,omitempty"`
	Pool       string `url:"pool,omitempty"`
	ServerPool string `url:"serverPool,omitempty"`
	ClientPool string `url:"clientPool,omitempty"`
	Door       string `url:"door,omitempty"`
	Client     string `url:"client,omitempty"`
	Sort       string `url:"sort,omitempty"`
}

// GetData returns the histogram data for a specification key.
func (s *BillingService) GetData(ctx context.Context, key string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/billing/histograms/"+seg(key), nil)
}

// GetGrid describes the available billing histograms.
func (s *BillingService) GetGrid(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/billing/histograms/grid/description", nil)
}

// GetGridData returns the data of all billing histograms.
func (s *BillingService) GetGridData(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/billing/histograms", nil)
}

// GetP2ps lists pool to pool transfers of a file.
func (s *BillingService) GetP2ps(ctx context.Context, pnfsid string, params *BillingParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/billing/p2ps/"+seg(pnfsid), params)
}

// GetReads lists reads of a file.
func (s *BillingService) GetReads(ctx context.Context, pnfsid string, params *BillingParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/billing/reads/"+seg(pnfsid), params)
}

// GetRestores lists tape reads of a file.
func (s *BillingService) GetRestores(ctx context.Context, pnfsid string, params *BillingParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/billing/restores/"+seg(pnfsid), params)
}

// GetStores lists tape writes of a file.
func (s *BillingService) GetStores(ctx context.Context, pnfsid string, params *BillingParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/billing/stores/"+seg(pnfsid), params)
}

// GetWrites lists writes of a file.
func (s *BillingService) GetWrites(ctx context.Context, pnfsid string, params *BillingParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/billing/writes/"+seg(pnfsid), params)
}
