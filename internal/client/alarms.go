package client

import (
	"context"
	"encoding/json"
	"net/http"
)

// AlarmsService covers /alarms. All operations require the admin role.
type AlarmsService struct {
	service
}

type AlarmsParams struct {
	Offset        int    `url:"offset,omitempty"`
	Limit         int    `url:"limit,omitempty"`
	After         int64  `url:"after,omitempty"`
	Before        int64  `url:"before,omitempty"`
	IncludeClosed bool   `url:"includeClosed,omitempty"`
	Severity      string `url:"severity,omitempty"`
	Type          string `url:"type,omitempty"`
	Host          string `url:"host,omitempty"`
	Domain        string `url:"domain,omitempty"`
	Service       string `url:"service,omitempty"`
	Info          string `url:"info,omitempty"`
	Sort          string `url:"sort,omitempty"`
}

// GetPriority requests the priority mapped to an alarm type.
func (s *AlarmsService) GetPriority(ctx context.Context, alarmType string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/alarms/priorities/"+seg(alarmType), nil)
}

// GetPriorities requests the mapping of all alarm types to priorities.
func (s *AlarmsService) GetPriorities(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/alarms/priorities", nil)
}

// GetAlarms provides a filtered list of log entries.
func (s *AlarmsService) GetAlarms(ctx context.Context, params *AlarmsParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/alarms/logentries", params)
}

// BulkUpdateOrDelete updates or deletes several log entries. body has an
// "action" ("update" or "delete") and the "items" to act on.
func (s *AlarmsService) BulkUpdateOrDelete(ctx context.Context, body any) (json.RawMessage, error) {
	return s.client.send(ctx, http.MethodPatch, "/alarms/logentries", nil, body)
}

// DeleteAlarmEntry deletes one log entry.
func (s *AlarmsService) DeleteAlarmEntry(ctx context.Context, key string) error {
	_, err := s.client.call(ctx, http.MethodDelete, "/alarms/logentries/"+seg(key), nil, nil, nil)
	return err
}

// UpdateAlarmEntry opens or closes one log entry; body is {"closed": bool}.
func (s *AlarmsService) UpdateAlarmEntry(ctx context.Context, key string, body any) (json.RawMessage, error) {
	return s.client.send(ctx, http.MethodPatch, "/alarms/logentries/"+seg(key), nil, body)
}
