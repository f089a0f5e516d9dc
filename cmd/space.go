package cmd

import (
	"context"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var (
	tokensParams     client.TokensParams
	linkGroupsParams client.LinkGroupsParams
)

var spaceCmd = &cobra.Command{
	Use:     "spacemanager",
	Aliases: []string{"space"},
	Short:   "Space manager operations",
}

var getTokensCmd = &cobra.Command{
	Use:     "getTokens",
	Aliases: []string{"getTokensForGroup"},
	Short:   "Get information about space tokens",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Space.GetTokens(ctx, &tokensParams)
	}),
}

var getSpaceLinkGroupsCmd = &cobra.Command{
	Use:   "getLinkGroups",
	Short: "Get information about link groups",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Space.GetLinkGroups(ctx, &linkGroupsParams)
	}),
}

func init() {
	f := getTokensCmd.Flags()
	f.Int64Var(&tokensParams.ID, "id", 0, "the id of the space token")
	f.StringVar(&tokensParams.VOGroup, "voGroup", "", "VO group associated with the token")
	f.StringVar(&tokensParams.VORole, "voRole", "", "VO role associated with the token")
	f.StringVar(&tokensParams.AccessLatency, "accessLatency", "", "access latency associated with the token")
	f.StringVar(&tokensParams.RetentionPolicy, "retentionPolicy", "", "retention policy associated with the token")
	f.Int64Var(&tokensParams.GroupID, "groupId", 0, "id of link group to which token belongs")
	f.StringVar(&tokensParams.State, "state", "", "state of the token")
	f.Int64Var(&tokensParams.MinSize, "minSize", 0, "minimum size in bytes of token")
	f.Int64Var(&tokensParams.MinFreeSpace, "minFreeSpace", 0, "minimum amount of space in bytes still free for token")

	f = getSpaceLinkGroupsCmd.Flags()
	f.StringVar(&linkGroupsParams.Name, "name", "", "the name of the link group")
	f.Int64Var(&linkGroupsParams.ID, "id", 0, "the id of the link group")
	f.BoolVar(&linkGroupsParams.OnlineAllowed, "onlineAllowed", false, "whether the link group allows online access latency")
	f.BoolVar(&linkGroupsParams.NearlineAllowed, "nearlineAllowed", false, "whether the link group allows nearline access latency")
	f.BoolVar(&linkGroupsParams.ReplicaAllowed, "replicaAllowed", false, "whether the link group allows replica retention policy")
	f.BoolVar(&linkGroupsParams.OutputAllowed, "outputAllowed", false, "whether the link group allows output retention policy")
	f.BoolVar(&linkGroupsParams.CustodialAllowed, "custodialAllowed", false, "whether the link group allows custodial retention policy")
	f.StringVar(&linkGroupsParams.VOGroup, "voGroup", "", "VO group associated with the link group")
	f.StringVar(&linkGroupsParams.VORole, "voRole", "", "VO role associated with the link group")
	f.Int64Var(&linkGroupsParams.MinAvailableSpace, "minAvailableSpace", 0, "minimum amount of space in bytes still available")

	spaceCmd.AddCommand(getTokensCmd, getSpaceLinkGroupsCmd)
	rootCmd.AddCommand(spaceCmd)
}
