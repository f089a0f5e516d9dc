package model

import "time"

// SyncSnapshot is the status of a running sync as served by the status
// endpoint.
type SyncSnapshot struct {
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	FTSEndpoint string     `json:"fts_endpoint"`
	Channel     string     `json:"channel"`
	Watches     int        `json:"watches"`
	Reconnects  int        `json:"reconnects"`
	QueueDepth  int        `json:"queue_depth"`
	StartedAt   time.Time  `json:"started_at"`
	Submitted   int        `json:"submitted"`
	Dropped     int        `json:"dropped"`
	Failed      int        `json:"failed"`
	LastSubmit  *time.Time `json:"last_submit"`
}
