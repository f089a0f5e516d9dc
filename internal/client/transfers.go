package client

import (
	"context"
	"encoding/json"
)

type TransfersService struct {
	service
}

// TransfersParams filters the transfer snapshot. Token selects a previous
// snapshot; the current one is used when empty.
type TransfersParams struct {
	Token     string `url:"token,omitempty"`
	Offset    int    `url:"offset,omitempty"`
	Limit     int    `url:"limit,omitempty"`
	State     string `url:"state,omitempty"`
	Door      string `url:"door,omitempty"`
	Domain    string `url:"domain,omitempty"`
	Prot      string `url:"prot,omitempty"`
	UID       string `url:"uid,omitempty"`
	GID       string `url:"gid,omitempty"`
	VOMSGroup string `url:"vomsgroup,omitempty"`
	PnfsID    string `url:"pnfsid,omitempty"`
	Pool      string `url:"pool,omitempty"`
	Client    string `url:"client,omitempty"`
	Sort      string `url:"sort,omitempty"`
}

// GetTransfers lists the current transfers.
func (s *TransfersService) GetTransfers(ctx context.Context, params *TransfersParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/transfers", params)
}
