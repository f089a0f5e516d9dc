package client

import (
	"context"
	"encoding/json"
)

type IdentityService struct {
	service
}

// GetUserAttributes describes the authenticated user.
func (s *IdentityService) GetUserAttributes(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/user", nil)
}
