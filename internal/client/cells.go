package client

import (
	"context"
	"encoding/json"
)

type CellsService struct {
	service
}

// GetCells lists every cell with its data.
func (s *CellsService) GetCells(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/cells", nil)
}

// GetCellData describes one cell.
func (s *CellsService) GetCellData(ctx context.Context, address string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/cells/"+seg(address), nil)
}

// GetAddresses lists the well known cell addresses.
func (s *CellsService) GetAddresses(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.client.get(ctx, "/cells/addresses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
