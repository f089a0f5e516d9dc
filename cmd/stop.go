package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running sync after its queue is drained",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := statusURL("/stop")
		if err != nil {
			return err
		}

		resp, err := http.Post(u, "application/json", nil)
		if err != nil {
			return fmt.Errorf("sync not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status server: %s", resp.Status)
		}

		fmt.Println("stopping")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
