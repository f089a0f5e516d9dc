package model

import (
	"time"

	"gorm.io/gorm"
)

type History struct {
	gorm.Model
	TransferID     string         `gorm:"index" json:"transfer_id"`
	Status         TransferStatus `gorm:"index;not null" json:"status"`
	SourceURL      string         `gorm:"not null" json:"source_url"`
	DestinationURL string         `gorm:"not null" json:"destination_url"`
	FTSJobID       string         `json:"fts_job_id,omitempty"`
	Checksum       string         `json:"checksum,omitempty"`
	Size           int64          `json:"size"`
	ErrMsg         string         `json:"error,omitempty"`
	SubmittedAt    time.Time      `gorm:"index" json:"submitted_at"`
}
