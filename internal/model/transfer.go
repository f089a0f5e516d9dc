package model

import (
	"time"

	"github.com/google/uuid"
)

// TransferRequest asks for one file to be replicated through FTS.
type TransferRequest struct {
	ID             string
	SourceURL      string
	DestinationURL string
	FTSEndpoint    string
	Enqueued       time.Time
}

func NewTransferRequest(sourceURL, destinationURL, ftsEndpoint string) TransferRequest {
	return TransferRequest{
		ID:             uuid.NewString(),
		SourceURL:      sourceURL,
		DestinationURL: destinationURL,
		FTSEndpoint:    ftsEndpoint,
		Enqueued:       time.Now(),
	}
}

type TransferStatus string

const (
	TransferSubmitted TransferStatus = "SUBMITTED"
	TransferDropped   TransferStatus = "DROPPED"
	TransferFailed    TransferStatus = "FAILED"
)

// TransferResult is the outcome of one worker pass over a request.
// DROPPED means the source never became available.
type TransferResult struct {
	Request  TransferRequest
	Status   TransferStatus
	JobID    string
	Checksum string
	Size     int64
	Err      error
}
