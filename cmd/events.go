package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"dcache-admin/internal/client"
	"dcache-admin/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	eventType      string
	channelID      string
	subscriptionID string
	eventsBody     string
	eventsClientID string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Support for SSE clients receiving dCache events",
}

// optionalBody parses --body when it was given.
func optionalBody() (any, error) {
	if eventsBody == "" {
		return nil, nil
	}
	return parseBody(eventsBody)
}

var serviceMetadataCmd = &cobra.Command{
	Use:   "serviceMetadata",
	Short: "Obtain general information about event support in dCache",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Events.ServiceMetadata(ctx)
	}),
}

var getEventTypesCmd = &cobra.Command{
	Use:   "getEventTypes",
	Short: "Obtain a list of the available event types",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Events.GetEventTypes(ctx)
	}),
}

var getEventTypeCmd = &cobra.Command{
	Use:   "getEventType",
	Short: "Obtain non-schema information about a specific event type",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Events.GetEventType(ctx, eventType)
	}),
}

var getSelectorSchemaCmd = &cobra.Command{
	Use:   "getSelectorSchema",
	Short: "Obtain the JSON schema for selectors of a specific event type",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Events.GetSelectorSchema(ctx, eventType)
	}),
}

var getEventSchemaCmd = &cobra.Command{
	Use:   "getEventSchema",
	Short: "Obtain the JSON schema for events of a specific event type",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Events.GetEventSchema(ctx, eventType)
	}),
}

var getChannelsCmd = &cobra.Command{
	Use:   "getChannels",
	Short: "Obtain a list of channels",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Events.GetChannels(ctx, &client.ChannelsParams{ClientID: eventsClientID})
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Request a new channel",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		body, err := optionalBody()
		if err != nil {
			return nil, err
		}
		return c.Events.Register(ctx, body)
	}),
}

var channelMetadataCmd = &cobra.Command{
	Use:   "channelMetadata",
	Short: "Obtain metadata about a channel",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Events.ChannelMetadata(ctx, channelID)
	}),
}

var modifyChannelCmd = &cobra.Command{
	Use:   "modify",
	Short: "Modify a channel",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		body, err := optionalBody()
		if err != nil {
			return nil, err
		}
		return nil, c.Events.ModifyChannel(ctx, channelID, body)
	}),
}

var deleteChannelCmd = &cobra.Command{
	Use:   "deleteChannel",
	Short: "Cancel a channel",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return nil, c.Events.DeleteChannel(ctx, channelID)
	}),
}

var channelSubscriptionsCmd = &cobra.Command{
	Use:   "channelSubscriptions",
	Short: "Obtain list of a channel's subscriptions",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Events.ChannelSubscriptions(ctx, channelID)
	}),
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Subscribe to events of a type",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		body, err := optionalBody()
		if err != nil {
			return nil, err
		}
		loc, err := c.Events.Subscribe(ctx, channelID, eventType, body)
		if err != nil {
			return nil, err
		}
		return map[string]string{"location": loc}, nil
	}),
}

var channelSubscriptionCmd = &cobra.Command{
	Use:   "channelSubscription",
	Short: "Return the selector of a subscription",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return c.Events.ChannelSubscription(ctx, channelID, eventType, subscriptionID)
	}),
}

var deleteSubscriptionCmd = &cobra.Command{
	Use:     "deleteSubscription",
	Aliases: []string{"delete"},
	Short:   "Cancel a subscription",
	RunE: apiRun(func(ctx context.Context, c *client.Client) (any, error) {
		return nil, c.Events.DeleteSubscription(ctx, channelID, eventType, subscriptionID)
	}),
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print the events of a channel until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		stream, err := c.Events.Stream(ctx, c.Events.ChannelLocation(channelID))
		if err != nil {
			return err
		}
		defer func() {
			_ = stream.Close()
		}()

		enc := json.NewEncoder(os.Stdout)
		for {
			ev, err := stream.Next()
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					logger.Log.Debug("event stream closed",
						zap.String("channel", channelID))
					return nil
				}
				return err
			}

			var data any = ev.Data
			if json.Valid([]byte(ev.Data)) {
				data = json.RawMessage(ev.Data)
			}
			if err := enc.Encode(map[string]any{
				"id":   ev.ID,
				"type": ev.Type,
				"data": data,
			}); err != nil {
				return err
			}
		}
	},
}

func init() {
	for _, cmd := range []*cobra.Command{getEventTypeCmd, getSelectorSchemaCmd, getEventSchemaCmd} {
		cmd.Flags().StringVar(&eventType, "type", "", "the specific event type to be described")
		_ = cmd.MarkFlagRequired("type")
	}

	getChannelsCmd.Flags().StringVar(&eventsClientID, "client-id", "", "limit channels by client-id")

	registerCmd.Flags().StringVar(&eventsBody, "body", "", "JSON object with the channel settings")

	for _, cmd := range []*cobra.Command{channelMetadataCmd, modifyChannelCmd, deleteChannelCmd, channelSubscriptionsCmd, listenCmd} {
		cmd.Flags().StringVar(&channelID, "id", "", "the channel id")
		_ = cmd.MarkFlagRequired("id")
	}
	modifyChannelCmd.Flags().StringVar(&eventsBody, "body", "", "JSON object with the modified settings")

	subscribeCmd.Flags().StringVar(&channelID, "id", "", "the channel id")
	subscribeCmd.Flags().StringVar(&eventType, "type", "", "the event type")
	subscribeCmd.Flags().StringVar(&eventsBody, "body", "", "JSON selector of the subscription")
	_ = subscribeCmd.MarkFlagRequired("id")
	_ = subscribeCmd.MarkFlagRequired("type")

	for _, cmd := range []*cobra.Command{channelSubscriptionCmd, deleteSubscriptionCmd} {
		cmd.Flags().StringVar(&channelID, "channel_id", "", "the channel id")
		cmd.Flags().StringVar(&eventType, "type", "", "the event type")
		cmd.Flags().StringVar(&subscriptionID, "subscription_id", "", "the subscription id")
		_ = cmd.MarkFlagRequired("channel_id")
		_ = cmd.MarkFlagRequired("type")
		_ = cmd.MarkFlagRequired("subscription_id")
	}

	eventsCmd.AddCommand(serviceMetadataCmd, getEventTypesCmd, getEventTypeCmd,
		getSelectorSchemaCmd, getEventSchemaCmd, getChannelsCmd, registerCmd,
		channelMetadataCmd, modifyChannelCmd, deleteChannelCmd, channelSubscriptionsCmd,
		subscribeCmd, channelSubscriptionCmd, deleteSubscriptionCmd, listenCmd)
	rootCmd.AddCommand(eventsCmd)
}
