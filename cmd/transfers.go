package cmd

import (
	"context"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var transfersParams client.TransfersParams

var transfersCmd = &cobra.Command{
	Use:   "transfers",
	Short: "Transfers operations",
}

var getTransfersCmd = &cobra.Command{
	Use:   "getTransfers",
	Short: "Provide a list of all client-initiated transfers",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Transfers.GetTransfers(ctx, &transfersParams)
	}),
}

func init() {
	f := getTransfersCmd.Flags()
	f.StringVar(&transfersParams.Token, "token", "", "use the snapshot corresponding to this UUID")
	f.IntVar(&transfersParams.Offset, "offset", 0, "the number of items to skip")
	f.IntVar(&transfersParams.Limit, "limit", 0, "the maximum number of items to return")
	f.StringVar(&transfersParams.State, "state", "", "filter on state")
	f.StringVar(&transfersParams.Door, "door", "", "filter on door")
	f.StringVar(&transfersParams.Domain, "domain", "", "filter on domain")
	f.StringVar(&transfersParams.Prot, "prot", "", "filter on protocol")
	f.StringVar(&transfersParams.UID, "uid", "", "filter on uid")
	f.StringVar(&transfersParams.GID, "gid", "", "filter on gid")
	f.StringVar(&transfersParams.VOMSGroup, "vomsgroup", "", "filter on vomsgroup")
	f.StringVar(&transfersParams.PnfsID, "pnfsid", "", "filter on pnfsid")
	f.StringVar(&transfersParams.Pool, "pool", "", "filter on pool")
	f.StringVar(&transfersParams.Client, "client", "", "filter on client")
	f.StringVar(&transfersParams.Sort, "sort", "door,waiting", "how to sort responses")

	transfersCmd.AddCommand(getTransfersCmd)
	rootCmd.AddCommand(transfersCmd)
}
