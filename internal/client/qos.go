package client

import (
	"context"
	"encoding/json"
)

type QoSService struct {
	service
}

// GetQosList lists the qualities of service for "file" or "directory".
func (s *QoSService) GetQosList(ctx context.Context, objectType string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/qos-management/qos/"+seg(objectType), nil)
}

// GetQueriedQosForFiles describes one file quality of service.
func (s *QoSService) GetQueriedQosForFiles(ctx context.Context, qos string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/qos-management/qos/file/"+seg(qos), nil)
}

// GetQueriedQosForDirectories describes one directory quality of service.
func (s *QoSService) GetQueriedQosForDirectories(ctx context.Context, qos string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/qos-management/qos/directory/"+seg(qos), nil)
}
