package client

import (
	"context"
	"encoding/json"
)

// SpaceService covers /space, the space manager reservations.
type SpaceService struct {
	service
}

type TokensParams struct {
	ID              int64  `url:"id,omitempty"`
	VOGroup         string `url:"voGroup,omitempty"`
	VORole          string `url:"voRole,omitempty"`
	AccessLatency   string `url:"accessLatency,omitempty"`
	RetentionPolicy string `url:"retentionPolicy,omitempty"`
	GroupID         int64  `url:"groupId,omitempty"`
	State           string `url:"state,omitempty"`
	MinSize         int64  `url:"minSize,omitempty"`
	MinFreeSpace    int64  `url:"minFreeSpace,omitempty"`
}

type LinkGroupsParams struct {
	Name              string `url:"name,omitempty"`
	ID                int64  `url:"id,omitempty"`
	OnlineAllowed     bool   `url:"onlineAllowed,omitempty"`
	NearlineAllowed   bool   `url:"nearlineAllowed,omitempty"`
	ReplicaAllowed    bool   `url:"replicaAllowed,omitempty"`
	OutputAllowed     bool   `url:"outputAllowed,omitempty"`
	CustodialAllowed  bool   `url:"custodialAllowed,omitempty"`
	VOGroup           string `url:"voGroup,omitempty"`
	VORole            string `url:"voRole,omitempty"`
	MinAvailableSpace int64  `url:"minAvailableSpace,omitempty"`
}

// GetTokens lists space tokens matching the filter.
func (s *SpaceService) GetTokens(ctx context.Context, params *TokensParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/space/tokens", params)
}

// GetLinkGroups lists link groups matching the filter.
func (s *SpaceService) GetLinkGroups(ctx context.Context, params *LinkGroupsParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/space/linkgroups", params)
}
