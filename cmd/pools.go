package cmd

import (
	"context"
	"encoding/json"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var (
	poolName       string
	poolPnfsID     string
	poolBody       string
	moverID        int64
	moversParams   client.MoversParams
	nearlineParams client.NearlineParams
	restoresParams client.RestoresParams
)

var poolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "Pools operations",
}

type poolQuery func(ctx context.Context, pool string) (json.RawMessage, error)

func poolCmd(use, short string, get func(c *client.Client) poolQuery) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
			return get(c)(ctx, poolName)
		}),
	}
	cmd.Flags().StringVar(&poolName, "pool", "", "the pool to be described")
	_ = cmd.MarkFlagRequired("pool")
	return cmd
}

var getPoolsCmd = &cobra.Command{
	Use:   "getPools",
	Short: "Get information about all pools",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Pools.GetPools(ctx)
	}),
}

var getMoversCmd = &cobra.Command{
	Use:   "getMovers",
	Short: "Get mover information for a specific pool",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Pools.GetMovers(ctx, poolName, &moversParams)
	}),
}

var killMoversCmd = &cobra.Command{
	Use:   "killMovers",
	Short: "Kill a mover",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return nil, c.Pools.KillMovers(ctx, poolName, moverID)
	}),
}

var updateModeCmd = &cobra.Command{
	Use:   "updateMode",
	Short: "Modify a pool's mode",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		body, err := parseBody(poolBody)
		if err != nil {
			return nil, err
		}
		return c.Pools.UpdateMode(ctx, poolName, body)
	}),
}

var getRepositoryInfoForFileCmd = &cobra.Command{
	Use:   "getRepositoryInfoForFile",
	Short: "Get information about a file in the repository of a pool",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Pools.GetRepositoryInfoForFile(ctx, poolName, poolPnfsID)
	}),
}

var getNearlineQueuesCmd = &cobra.Command{
	Use:   "getNearlineQueues",
	Short: "Get nearline activity information for a specific pool",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Pools.GetNearlineQueues(ctx, poolName, &nearlineParams)
	}),
}

var getPoolRestoresCmd = &cobra.Command{
	Use:   "getRestores",
	Short: "Get information about all restores in the pools",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Pools.GetRestores(ctx, &restoresParams)
	}),
}

func init() {
	f := getMoversCmd.Flags()
	f.StringVar(&poolName, "pool", "", "the pool to be described")
	f.StringVar(&moversParams.Type, "type", "", "comma separated list of mover types")
	f.IntVar(&moversParams.Offset, "offset", 0, "the number of items to skip")
	f.IntVar(&moversParams.Limit, "limit", 0, "the maximum number of items to return")
	f.StringVar(&moversParams.PnfsID, "pnfsid", "", "select movers operating on a specific PNFS-ID")
	f.StringVar(&moversParams.Queue, "queue", "", "select movers with a specific queue")
	f.StringVar(&moversParams.State, "state", "", "select movers in a particular state")
	f.StringVar(&moversParams.Mode, "mode", "", "select movers with a specific mode")
	f.StringVar(&moversParams.Door, "door", "", "select movers initiated by a specific door")
	f.StringVar(&moversParams.StorageClass, "storageClass", "", "select movers with a specific storage class")
	f.StringVar(&moversParams.Sort, "sort", "door,startTime", "how returned items should be sorted")
	_ = getMoversCmd.MarkFlagRequired("pool")

	killMoversCmd.Flags().StringVar(&poolName, "pool", "", "the pool with the mover to be killed")
	killMoversCmd.Flags().Int64Var(&moverID, "id", 0, "the id of the mover to be killed")
	_ = killMoversCmd.MarkFlagRequired("pool")
	_ = killMoversCmd.MarkFlagRequired("id")

	updateModeCmd.Flags().StringVar(&poolName, "pool", "", "the pool affected by the mode change")
	updateModeCmd.Flags().StringVar(&poolBody, "body", "", "JSON object describing how the pool should be modified")
	_ = updateModeCmd.MarkFlagRequired("pool")
	_ = updateModeCmd.MarkFlagRequired("body")

	getRepositoryInfoForFileCmd.Flags().StringVar(&poolName, "pool", "", "the pool to be described")
	getRepositoryInfoForFileCmd.Flags().StringVar(&poolPnfsID, "pnfsid", "", "the PNFS-ID of the file to be described")
	_ = getRepositoryInfoForFileCmd.MarkFlagRequired("pool")
	_ = getRepositoryInfoForFileCmd.MarkFlagRequired("pnfsid")

	f = getNearlineQueuesCmd.Flags()
	f.StringVar(&poolName, "pool", "", "the pool to be described")
	f.StringVar(&nearlineParams.Type, "type", "", "select transfers of a specific type (flush, stage, remove)")
	f.IntVar(&nearlineParams.Offset, "offset", 0, "the number of items to skip")
	f.IntVar(&nearlineParams.Limit, "limit", 0, "the maximum number of items to return")
	f.StringVar(&nearlineParams.PnfsID, "pnfsid", "", "select only operations affecting this PNFS-ID")
	f.StringVar(&nearlineParams.State, "state", "", "select only operations in this state")
	f.StringVar(&nearlineParams.StorageClass, "storageClass", "", "select only operations of this storage class")
	f.StringVar(&nearlineParams.Sort, "sort", "class,created", "how the returned values should be sorted")
	_ = getNearlineQueuesCmd.MarkFlagRequired("pool")

	f = getPoolRestoresCmd.Flags()
	f.StringVar(&restoresParams.Token, "token", "", "use the snapshot corresponding to this UUID")
	f.IntVar(&restoresParams.Offset, "offset", 0, "the number of restores to skip")
	f.IntVar(&restoresParams.Limit, "limit", 0, "the maximum number of restores to return")
	f.StringVar(&restoresParams.PnfsID, "pnfsid", "", "select only restores that affect this PNFS-ID")
	f.StringVar(&restoresParams.Subnet, "subnet", "", "select only restores triggered by clients from this subnet")
	f.StringVar(&restoresParams.Pool, "pool", "", "select only restores on this pool")
	f.StringVar(&restoresParams.Status, "status", "", "select only restores with this status")
	f.StringVar(&restoresParams.Sort, "sort", "pool,started", "comma separated list of fields on which to sort the results")

	poolsCmd.AddCommand(
		getPoolsCmd,
		poolCmd("getPool", "Get information about a specific pool",
			func(c *client.Client) poolQuery { return c.Pools.GetPool }),
		getMoversCmd,
		poolCmd("getQueueHistograms", "Get histogram data about the queues of a pool",
			func(c *client.Client) poolQuery { return c.Pools.GetQueueHistograms }),
		poolCmd("getFilesHistograms", "Get histogram data about the files of a pool",
			func(c *client.Client) poolQuery { return c.Pools.GetFilesHistograms }),
		poolCmd("getPoolUsage", "Get usage information about a specific pool",
			func(c *client.Client) poolQuery { return c.Pools.GetPoolUsage }),
		getRepositoryInfoForFileCmd,
		getNearlineQueuesCmd,
		killMoversCmd,
		updateModeCmd,
		getPoolRestoresCmd,
	)
	rootCmd.AddCommand(poolsCmd)
}
