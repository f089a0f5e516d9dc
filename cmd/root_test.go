package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBody(t *testing.T) {
	body, err := parseBody(`{"action":"mkdir","name":"new"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"mkdir","name":"new"}`, string(body))

	_, err = parseBody(`{action:mkdir}`)
	assert.Error(t, err)
}

func TestCommandTree(t *testing.T) {
	groups := map[string][]string{
		"alarms":       {"getPriority", "getPriorities", "getAlarms", "bulkUpdateOrDelete", "deleteAlarmEntry", "updateAlarmEntry"},
		"billing":      {"getData", "getGrid", "getGridData", "getP2ps", "getReads", "getRestores", "getStores", "getWrites"},
		"cells":        {"getCells", "getCellData", "getAddresses"},
		"identity":     {"getUserAttributes"},
		"namespace":    {"getFileAttributes", "cmrResources", "deleteFileEntry", "getAttributes", "bring-online"},
		"qos":          {"getQosList", "getQueriedQosForFiles", "getQueriedQosForDirectories"},
		"spacemanager": {"getTokens", "getLinkGroups"},
		"transfers":    {"getTransfers"},
		"poolmanager": {"getPoolGroups", "getPoolGroup", "getPoolsOfGroup", "getGroupUsage", "getQueueInfo",
			"getSpaceInfo", "getQueueHistograms", "getFilesHistograms", "getLinks", "getLinkGroups",
			"getPartitions", "match", "getUnits", "getUnitGroups"},
		"pools": {"getPools", "getPool", "getMovers", "getQueueHistograms", "getFilesHistograms",
			"getPoolUsage", "getRepositoryInfoForFile", "getNearlineQueues", "killMovers", "updateMode", "getRestores"},
		"events": {"serviceMetadata", "getEventTypes", "getEventType", "getSelectorSchema", "getEventSchema",
			"getChannels", "register", "channelMetadata", "modify", "deleteChannel", "channelSubscriptions",
			"subscribe", "channelSubscription", "deleteSubscription", "listen"},
	}

	for group, subs := range groups {
		for _, sub := range subs {
			cmd, _, err := rootCmd.Find([]string{group, sub})
			if assert.NoError(t, err, "%s %s", group, sub) {
				assert.Equal(t, sub, cmd.Name(), "%s %s", group, sub)
			}
		}
	}

	for _, name := range []string{"sync", "status", "stop", "history"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestSyncFlags(t *testing.T) {
	for _, name := range []string{"root_path", "source", "destination", "fts_host", "recursive",
		"workers", "resubscribe", "history-db", "ignore", "close-abandoned"} {
		assert.NotNil(t, syncCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "r", syncCmd.Flags().Lookup("recursive").Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("status-port"))
	assert.NotEmpty(t, rootCmd.PersistentFlags().Lookup("x509_proxy").NoOptDefVal)
}
