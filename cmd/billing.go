package cmd

import (
	"context"
	"encoding/json"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var (
	billingParams client.BillingParams
	billingPnfsID string
	billingKey    string
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Billing operations",
}

type billingRecords func(ctx context.Context, pnfsid string, params *client.BillingParams) (json.RawMessage, error)

// billingRecordsCmd builds one of the per-file record queries. They all
// share the same filters.
func billingRecordsCmd(use, short string, get func(c *client.Client) billingRecords) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
			return get(c)(ctx, billingPnfsID, &billingParams)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&billingPnfsID, "pnfsid", "", "the file to list")
	f.StringVar(&billingParams.Before, "before", "", "end datestamp of the query")
	f.StringVar(&billingParams.After, "after", "", "start datestamp of the query")
	f.IntVar(&billingParams.Limit, "limit", 0, "maximum number of records")
	f.IntVar(&billingParams.Offset, "offset", 0, "number of records to skip")
	f.StringVar(&billingParams.Pool, "pool", "", "the pool on which the operation took place")
	f.StringVar(&billingParams.ServerPool, "serverPool", "", "the source pool of a p2p transfer")
	f.StringVar(&billingParams.ClientPool, "clientPool", "", "the destination pool of a p2p transfer")
	f.StringVar(&billingParams.Door, "door", "", "the door used")
	f.StringVar(&billingParams.Client, "client", "", "the client host")
	f.StringVar(&billingParams.Sort, "sort", "date", "how to sort responses")
	_ = cmd.MarkFlagRequired("pnfsid")

	return cmd
}

var getBillingDataCmd = &cobra.Command{
	Use:   "getData",
	Short: "Request the histogram data for a specification key",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Billing.GetData(ctx, billingKey)
	}),
}

var getGridCmd = &cobra.Command{
	Use:   "getGrid",
	Short: "Request the list of available histogram specifications",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Billing.GetGrid(ctx)
	}),
}

var getGridDataCmd = &cobra.Command{
	Use:   "getGridData",
	Short: "Request the data of all available histograms",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Billing.GetGridData(ctx)
	}),
}

func init() {
	getBillingDataCmd.Flags().StringVar(&billingKey, "key", "", "the histogram specification key")
	_ = getBillingDataCmd.MarkFlagRequired("key")

	billingCmd.AddCommand(
		getBillingDataCmd,
		getGridCmd,
		getGridDataCmd,
		billingRecordsCmd("getP2ps", "Provide a list of pool-to-pool transfers for a file",
			func(c *client.Client) billingRecords { return c.Billing.GetP2ps }),
		billingRecordsCmd("getReads", "Provide a list of read transfers for a file",
			func(c *client.Client) billingRecords { return c.Billing.GetReads }),
		billingRecordsCmd("getRestores", "Provide a list of tape reads for a file",
			func(c *client.Client) billingRecords { return c.Billing.GetRestores }),
		billingRecordsCmd("getStores", "Provide a list of tape writes for a file",
			func(c *client.Client) billingRecords { return c.Billing.GetStores }),
		billingRecordsCmd("getWrites", "Provide a list of write transfers for a file",
			func(c *client.Client) billingRecords { return c.Billing.GetWrites }),
	)
	rootCmd.AddCommand(billingCmd)
}
