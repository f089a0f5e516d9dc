package cmd

import (
	"context"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Identity operations",
}

var getUserAttributesCmd = &cobra.Command{
	Use:   "getUserAttributes",
	Short: "Provide information about the current user",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Identity.GetUserAttributes(ctx)
	}),
}

func init() {
	identityCmd.AddCommand(getUserAttributesCmd)
	rootCmd.AddCommand(identityCmd)
}
