package cmd

import (
	"context"

	"dcache-admin/internal/client"

	"github.com/spf13/cobra"
)

var (
	alarmParams client.AlarmsParams
	alarmType   string
	alarmKey    string
	alarmBody   string
)

var alarmsCmd = &cobra.Command{
	Use:   "alarms",
	Short: "Alarms operations",
}

var getPriorityCmd = &cobra.Command{
	Use:   "getPriority",
	Short: "Request the current mapped priority for a particular alarm",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Alarms.GetPriority(ctx, alarmType)
	}),
}

var getPrioritiesCmd = &cobra.Command{
	Use:   "getPriorities",
	Short: "Request the current mapping of all alarm types to priorities",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Alarms.GetPriorities(ctx)
	}),
}

var getAlarmsCmd = &cobra.Command{
	Use:   "getAlarms",
	Short: "General query returning a filtered list of log entries",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Alarms.GetAlarms(ctx, &alarmParams)
	}),
}

var bulkUpdateOrDeleteCmd = &cobra.Command{
	Use:   "bulkUpdateOrDelete",
	Short: "Batch update or delete of log entries",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		body, err := parseBody(alarmBody)
		if err != nil {
			return nil, err
		}
		return c.Alarms.BulkUpdateOrDelete(ctx, body)
	}),
}

var deleteAlarmEntryCmd = &cobra.Command{
	Use:   "deleteAlarmEntry",
	Short: "Delete a log entry",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return nil, c.Alarms.DeleteAlarmEntry(ctx, alarmKey)
	}),
}

var updateAlarmEntryCmd = &cobra.Command{
	Use:   "updateAlarmEntry",
	Short: "Update a log entry",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		body, err := parseBody(alarmBody)
		if err != nil {
			return nil, err
		}
		return c.Alarms.UpdateAlarmEntry(ctx, alarmKey, body)
	}),
}

func init() {
	getPriorityCmd.Flags().StringVar(&alarmType, "type", "", "the alarm type")
	_ = getPriorityCmd.MarkFlagRequired("type")

	f := getAlarmsCmd.Flags()
	f.IntVar(&alarmParams.Offset, "offset", 0, "number of entries to skip")
	f.IntVar(&alarmParams.Limit, "limit", 0, "maximum number of entries to return")
	f.Int64Var(&alarmParams.After, "after", 0, "return no alarms before this datestamp")
	f.Int64Var(&alarmParams.Before, "before", 0, "return no alarms after this datestamp")
	f.BoolVar(&alarmParams.IncludeClosed, "includeClosed", false, "include closed alarms")
	f.StringVar(&alarmParams.Severity, "severity", "", "filter on severity")
	f.StringVar(&alarmParams.Type, "type", "", "filter on alarm type")
	f.StringVar(&alarmParams.Host, "host", "", "filter on host")
	f.StringVar(&alarmParams.Domain, "domain", "", "filter on domain")
	f.StringVar(&alarmParams.Service, "service", "", "filter on service")
	f.StringVar(&alarmParams.Info, "info", "", "filter on info")
	f.StringVar(&alarmParams.Sort, "sort", "", "comma separated list of fields to sort on")

	bulkUpdateOrDeleteCmd.Flags().StringVar(&alarmBody, "body", "", `JSON object with "action" and "items"`)
	_ = bulkUpdateOrDeleteCmd.MarkFlagRequired("body")

	deleteAlarmEntryCmd.Flags().StringVar(&alarmKey, "key", "", "the alarm key")
	_ = deleteAlarmEntryCmd.MarkFlagRequired("key")

	updateAlarmEntryCmd.Flags().StringVar(&alarmKey, "key", "", "the alarm key")
	updateAlarmEntryCmd.Flags().StringVar(&alarmBody, "body", "", "JSON object describing the update")
	_ = updateAlarmEntryCmd.MarkFlagRequired("key")
	_ = updateAlarmEntryCmd.MarkFlagRequired("body")

	alarmsCmd.AddCommand(getPriorityCmd, getPrioritiesCmd, getAlarmsCmd,
		bulkUpdateOrDeleteCmd, deleteAlarmEntryCmd, updateAlarmEntryCmd)
	rootCmd.AddCommand(alarmsCmd)
}
