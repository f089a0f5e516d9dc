package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"dcache-admin/internal/model"
	"dcache-admin/internal/repository"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// getStatus fetches path from the status server of a running sync and
// decodes the JSON response into out.
func getStatus(path string, out any) error {
	u, err := statusURL(path)
	if err != nil {
		return err
	}

	resp, err := http.Get(u)
	if err != nil {
		return fmt.Errorf("sync not running: %w", err)
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("status server: %s: %s", resp.Status, e.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode status response: %w", err)
	}
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View the status of a running sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Sync    model.SyncSnapshot `json:"sync"`
			History *repository.Stats  `json:"history"`
		}
		if err := getStatus("/status", &result); err != nil {
			return err
		}

		snap := result.Sync
		lastSubmit := "-"
		if snap.LastSubmit != nil {
			lastSubmit = snap.LastSubmit.Format("2006-01-02 15:04:05")
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"field", "value"})
		table.AppendBulk([][]string{
			{"source", snap.Source},
			{"destination", snap.Destination},
			{"fts", snap.FTSEndpoint},
			{"channel", snap.Channel},
			{"watches", strconv.Itoa(snap.Watches)},
			{"reconnects", strconv.Itoa(snap.Reconnects)},
			{"queued", strconv.Itoa(snap.QueueDepth)},
			{"submitted", strconv.Itoa(snap.Submitted)},
			{"dropped", strconv.Itoa(snap.Dropped)},
			{"failed", strconv.Itoa(snap.Failed)},
			{"last submit", lastSubmit},
			{"uptime", time.Since(snap.StartedAt).Round(time.Second).String()},
		})
		if h := result.History; h != nil {
			table.Append([]string{"journal", fmt.Sprintf("%d total, %d submitted, %d dropped, %d failed",
				h.Total, h.Submitted, h.Dropped, h.Failed)})
		}
		table.Render()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
