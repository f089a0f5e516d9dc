package client

import (
	"context"
	"encoding/json"
)

// PoolManagerService covers the pool selection unit: pool groups, links,
// partitions and units.
type PoolManagerService struct {
	service
}

// MatchParams describes a request for pool selection. The server defaults
// are type READ, store "*", dcache "*", protocol "*/*" and linkGroup none.
type MatchParams struct {
	Type      string `url:"type,omitempty"`
	Store     string `url:"store,omitempty"`
	DCache    string `url:"dcache,omitempty"`
	Net       string `url:"net,omitempty"`
	Protocol  string `url:"protocol,omitempty"`
	LinkGroup string `url:"linkGroup,omitempty"`
}

func (s *PoolManagerService) GetPoolGroups(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/poolgroups", nil)
}

func (s *PoolManagerService) GetPoolGroup(ctx context.Context, group string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/poolgroups/"+seg(group), nil)
}

func (s *PoolManagerService) GetPoolsOfGroup(ctx context.Context, group string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/poolgroups/"+seg(group)+"/pools", nil)
}

func (s *PoolManagerService) GetGroupUsage(ctx context.Context, group string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/poolgroups/"+seg(group)+"/usage", nil)
}

func (s *PoolManagerService) GetQueueInfo(ctx context.Context, group string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/poolgroups/"+seg(group)+"/queues", nil)
}

func (s *PoolManagerService) GetSpaceInfo(ctx context.Context, group string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/poolgroups/"+seg(group)+"/space", nil)
}

func (s *PoolManagerService) GetQueueHistograms(ctx context.Context, group string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/poolgroups/"+seg(group)+"/histograms/queues", nil)
}

func (s *PoolManagerService) GetFilesHistograms(ctx context.Context, group string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/poolgroups/"+seg(group)+"/histograms/files", nil)
}

func (s *PoolManagerService) GetLinks(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/links", nil)
}

func (s *PoolManagerService) GetLinkGroups(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/links/groups", nil)
}

func (s *PoolManagerService) GetPartitions(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/partitions", nil)
}

// Match describes the pools the selection unit would pick for a request.
func (s *PoolManagerService) Match(ctx context.Context, params *MatchParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/pool-preferences", params)
}

func (s *PoolManagerService) GetUnits(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/units", nil)
}

func (s *PoolManagerService) GetUnitGroups(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/units/groups", nil)
}
