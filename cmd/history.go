package cmd

import (
	"fmt"
	"os"
	"strconv"

	"dcache-admin/internal/model"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	historyN      int
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the transfer journal of a running sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fmt.Sprintf("/history?n=%d", historyN)
		if historyFailed {
			path += "&failed=true"
		}

		var histories []model.History
		if err := getStatus(path, &histories); err != nil {
			return err
		}

		if len(histories) == 0 {
			fmt.Println("no history yet")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"time", "status", "source", "fts job", "size", "error"})
		for _, h := range histories {
			table.Append([]string{
				h.SubmittedAt.Format("2006-01-02 15:04:05"),
				string(h.Status),
				h.SourceURL,
				h.FTSJobID,
				strconv.FormatInt(h.Size, 10),
				h.ErrMsg,
			})
		}
		table.Render()

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of history entries to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only show dropped and failed transfers")
	rootCmd.AddCommand(historyCmd)
}
