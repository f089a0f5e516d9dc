package cmd

import (
	"context"
	"fmt"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var (
	qosType string
	qosName string
)

var qosCmd = &cobra.Command{
	Use:   "qos",
	Short: "Quality of service operations",
}

var getQosListCmd = &cobra.Command{
	Use:   "getQosList",
	Short: "List the available quality of services for a kind of object",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		if qosType != "file" && qosType != "directory" {
			return nil, fmt.Errorf("invalid type %q, expected file or directory", qosType)
		}
		return c.QoS.GetQosList(ctx, qosType)
	}),
}

var getQueriedQosForFilesCmd = &cobra.Command{
	Use:   "getQueriedQosForFiles",
	Short: "Provide information about a specific file quality of service",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.QoS.GetQueriedQosForFiles(ctx, qosName)
	}),
}

var getQueriedQosForDirectoriesCmd = &cobra.Command{
	Use:   "getQueriedQosForDirectories",
	Short: "Provide information about a specific directory quality of service",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.QoS.GetQueriedQosForDirectories(ctx, qosName)
	}),
}

func init() {
	getQosListCmd.Flags().StringVar(&qosType, "type", "", "the kind of object to query (file, directory)")
	_ = getQosListCmd.MarkFlagRequired("type")

	getQueriedQosForFilesCmd.Flags().StringVar(&qosName, "qos", "", "the file quality of service to query")
	_ = getQueriedQosForFilesCmd.MarkFlagRequired("qos")

	getQueriedQosForDirectoriesCmd.Flags().StringVar(&qosName, "qos", "", "the directory quality of service to query")
	_ = getQueriedQosForDirectoriesCmd.MarkFlagRequired("qos")

	qosCmd.AddCommand(getQosListCmd, getQueriedQosForFilesCmd, getQueriedQosForDirectoriesCmd)
	rootCmd.AddCommand(qosCmd)
}
