package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dcache-admin/internal/client"
	"dcache-admin/internal/model"
)

// FTS submits third party copies to an FTS3 REST endpoint.
type FTS struct {
	client *http.Client
}

func NewFTS(hc *http.Client) *FTS {
	return &FTS{client: hc}
}

type ftsJob struct {
	Files  []ftsFile `json:"files"`
	Params ftsParams `json:"params"`
}

type ftsFile struct {
	Sources      []string `json:"sources"`
	Destinations []string `json:"destinations"`
	Filesize     int64    `json:"filesize"`
	Checksum     string   `json:"checksum"`
}

type ftsParams struct {
	VerifyChecksum bool `json:"verify_checksum"`
}

// Submit creates one FTS job copying the request's source to its
// destination and returns the job id when FTS reports one.
func (f *FTS) Submit(ctx context.Context, req model.TransferRequest, sum Checksum) (string, error) {
	job := ftsJob{
		Files: []ftsFile{{
			Sources:      []string{req.SourceURL},
			Destinations: []string{req.DestinationURL},
			Filesize:     sum.Size,
			Checksum:     sum.String(),
		}},
		Params: ftsParams{VerifyChecksum: true},
	}

	b, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode fts job: %w", err)
	}

	u := strings.TrimSuffix(req.FTSEndpoint, "/") + "/jobs"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to build fts request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("POST %s: %w", u, err)
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &client.APIError{
			Method:     http.MethodPost,
			URL:        u,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	var out struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to decode fts response: %w", err)
	}

	return out.JobID, nil
}
