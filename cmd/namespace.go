package cmd

import (
	"context"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var (
	nsParams client.FileAttributesParams
	nsPath   string
	nsPnfsID string
	nsBody   string
)

var namespaceCmd = &cobra.Command{
	Use:   "namespace",
	Short: "Namespace operations",
}

var getFileAttributesCmd = &cobra.Command{
	Use:   "getFileAttributes",
	Short: "Find metadata and optionally directory contents",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Namespace.GetFileAttributes(ctx, nsPath, &nsParams)
	}),
}

var cmrResourcesCmd = &cobra.Command{
	Use:   "cmrResources",
	Short: "Modify a file or directory",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		body, err := parseBody(nsBody)
		if err != nil {
			return nil, err
		}
		return c.Namespace.CmrResources(ctx, nsPath, body)
	}),
}

var deleteFileEntryCmd = &cobra.Command{
	Use:   "deleteFileEntry",
	Short: "Delete a file or directory",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return nil, c.Namespace.DeleteFileEntry(ctx, nsPath)
	}),
}

var getAttributesCmd = &cobra.Command{
	Use:   "getAttributes",
	Short: "Discover information about a file from the PNFS-ID",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Namespace.GetAttributes(ctx, nsPnfsID)
	}),
}

var bringOnlineCmd = &cobra.Command{
	Use:   "bring-online",
	Short: "Stage a file from tape to disk",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Namespace.BringOnline(ctx, nsPath)
	}),
}

func init() {
	f := getFileAttributesCmd.Flags()
	f.StringVar(&nsPath, "path", "", "path of file or directory")
	f.BoolVar(&nsParams.Children, "children", false, "whether to include directory listing")
	f.BoolVar(&nsParams.Locality, "locality", false, "whether to include file locality")
	f.BoolVar(&nsParams.Locations, "locations", false, "whether to include replica locations")
	f.BoolVar(&nsParams.QoS, "qos", false, "whether to include quality of service")
	f.IntVar(&nsParams.Limit, "limit", 0, "maximum number of children")
	f.IntVar(&nsParams.Offset, "offset", 0, "number of children to skip")
	_ = getFileAttributesCmd.MarkFlagRequired("path")

	cmrResourcesCmd.Flags().StringVar(&nsPath, "path", "", "path of file or directory to be modified")
	cmrResourcesCmd.Flags().StringVar(&nsBody, "body", "", `JSON object with an "action" and its arguments`)
	_ = cmrResourcesCmd.MarkFlagRequired("path")
	_ = cmrResourcesCmd.MarkFlagRequired("body")

	deleteFileEntryCmd.Flags().StringVar(&nsPath, "path", "", "path of file or directory")
	_ = deleteFileEntryCmd.MarkFlagRequired("path")

	getAttributesCmd.Flags().StringVar(&nsPnfsID, "pnfsid", "", "the PNFS-ID of a file or directory")
	_ = getAttributesCmd.MarkFlagRequired("pnfsid")

	bringOnlineCmd.Flags().StringVar(&nsPath, "path", "", "path of the file to stage")
	_ = bringOnlineCmd.MarkFlagRequired("path")

	namespaceCmd.AddCommand(getFileAttributesCmd, cmrResourcesCmd, deleteFileEntryCmd,
		getAttributesCmd, bringOnlineCmd)
	rootCmd.AddCommand(namespaceCmd)
}
