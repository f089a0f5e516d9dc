package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var (
	poolGroup   string
	matchParams client.MatchParams
)

var matchTypes = []string{"READ", "CACHE", "WRITE", "P2P", "ANY"}

var poolmanagerCmd = &cobra.Command{
	Use:   "poolmanager",
	Short: "Pool manager operations",
}

type groupQuery func(ctx context.Context, group string) (json.RawMessage, error)

// poolGroupCmd builds a query about a single pool group.
func poolGroupCmd(use, short string, get func(c *client.Client) groupQuery) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
			return get(c)(ctx, poolGroup)
		}),
	}
	cmd.Flags().StringVar(&poolGroup, "group", "", "the poolgroup to be described")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

// poolManagerListCmd builds a query without arguments.
func poolManagerListCmd(use, short string, get func(ctx context.Context, c *client.Client) (json.RawMessage, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
			return get(ctx, c)
		}),
	}
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Describe the pools selected by a particular request",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		if !slices.Contains(matchTypes, matchParams.Type) {
			return nil, fmt.Errorf("invalid type %q, expected one of %v", matchParams.Type, matchTypes)
		}
		return c.PoolManager.Match(ctx, &matchParams)
	}),
}

func init() {
	f := matchCmd.Flags()
	f.StringVar(&matchParams.Type, "type", "READ", "the operation type (READ, CACHE, WRITE, P2P, ANY)")
	f.StringVar(&matchParams.Store, "store", "*", "the name of the matching store unit")
	f.StringVar(&matchParams.DCache, "dcache", "*", "the name of the matching dcache unit")
	f.StringVar(&matchParams.Net, "net", "*", "the name of the matching net unit")
	f.StringVar(&matchParams.Protocol, "protocol", "*", "the matching protocol unit")
	f.StringVar(&matchParams.LinkGroup, "linkGroup", "none", "the linkgroup unit, or 'none' for a request outside of a linkgroup")

	poolmanagerCmd.AddCommand(
		poolManagerListCmd("getPoolGroups", "Get information about all poolgroups",
			func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
				return c.PoolManager.GetPoolGroups(ctx)
			}),
		poolGroupCmd("getPoolGroup", "Get information about a poolgroup",
			func(c *client.Client) groupQuery { return c.PoolManager.GetPoolGroup }),
		poolGroupCmd("getPoolsOfGroup", "Get a list of pools that are a member of a poolgroup",
			func(c *client.Client) groupQuery { return c.PoolManager.GetPoolsOfGroup }),
		poolGroupCmd("getGroupUsage", "Get usage metadata about a specific poolgroup",
			func(c *client.Client) groupQuery { return c.PoolManager.GetGroupUsage }),
		poolGroupCmd("getQueueInfo", "Get queue information about a specific poolgroup",
			func(c *client.Client) groupQuery { return c.PoolManager.GetQueueInfo }),
		poolGroupCmd("getSpaceInfo", "Get space information about a specific poolgroup",
			func(c *client.Client) groupQuery { return c.PoolManager.GetSpaceInfo }),
		poolGroupCmd("getQueueHistograms", "Get histogram data about queues of a poolgroup",
			func(c *client.Client) groupQuery { return c.PoolManager.GetQueueHistograms }),
		poolGroupCmd("getFilesHistograms", "Get histogram data about files of a poolgroup",
			func(c *client.Client) groupQuery { return c.PoolManager.GetFilesHistograms }),
		poolManagerListCmd("getLinks", "List all links",
			func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
				return c.PoolManager.GetLinks(ctx)
			}),
		poolManagerListCmd("getLinkGroups", "List all link groups",
			func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
				return c.PoolManager.GetLinkGroups(ctx)
			}),
		poolManagerListCmd("getPartitions", "List all partitions",
			func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
				return c.PoolManager.GetPartitions(ctx)
			}),
		matchCmd,
		poolManagerListCmd("getUnits", "List all units",
			func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
				return c.PoolManager.GetUnits(ctx)
			}),
		poolManagerListCmd("getUnitGroups", "List all unit groups",
			func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
				return c.PoolManager.GetUnitGroups(ctx)
			}),
	)
	rootCmd.AddCommand(poolmanagerCmd)
}
