package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"dcache-admin/internal/sse"
)

// EventsService covers /events: channels, subscriptions and the event
// stream itself.
type EventsService struct {
	service
}

// Channel is a server side event feed.
type Channel struct {
	ID       string
	Location string
}

type ChannelsParams struct {
	ClientID string `url:"client-id,omitempty"`
}

// RegisterRequest is the optional body of a channel registration.
type RegisterRequest struct {
	ClientID string `json:"client-id,omitempty"`
}

// ChannelID extracts the channel identifier from a channel location.
func ChannelID(location string) string {
	p := location
	if u, err := url.Parse(location); err == nil {
		p = u.Path
	}
	return path.Base(strings.TrimSuffix(p, "/"))
}

// ChannelLocation returns the stream URL of the channel with id.
func (s *EventsService) ChannelLocation(id string) string {
	return s.client.base + apiPrefix + "/events/channels/" + seg(id)
}

// ServiceMetadata obtains general information about event support.
func (s *EventsService) ServiceMetadata(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/events", nil)
}

// GetEventTypes obtains a list of the available event types.
func (s *EventsService) GetEventTypes(ctx context.Context) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/events/eventTypes", nil)
}

// GetEventType obtains non-schema information about one event type.
func (s *EventsService) GetEventType(ctx context.Context, eventType string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/events/eventTypes/"+seg(eventType), nil)
}

// GetSelectorSchema obtains the JSON schema of an event type's selectors.
func (s *EventsService) GetSelectorSchema(ctx context.Context, eventType string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/events/eventTypes/"+seg(eventType)+"/selector", nil)
}

// GetEventSchema obtains the JSON schema of events of an event type.
func (s *EventsService) GetEventSchema(ctx context.Context, eventType string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/events/eventTypes/"+seg(eventType)+"/event", nil)
}

// GetChannels obtains the list of channels of the caller.
func (s *EventsService) GetChannels(ctx context.Context, params *ChannelsParams) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/events/channels", params)
}

// Register requests a new channel. body may be nil.
func (s *EventsService) Register(ctx context.Context, body any) (*Channel, error) {
	loc, err := s.client.create(ctx, "/events/channels", body)
	if err != nil {
		return nil, fmt.Errorf("failed to register channel: %w", err)
	}

	return &Channel{ID: ChannelID(loc), Location: loc}, nil
}

// ChannelMetadata obtains metadata about a channel.
func (s *EventsService) ChannelMetadata(ctx context.Context, id string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/events/channels/"+seg(id), nil)
}

// ModifyChannel modifies a channel, e.g. its disconnect timeout.
func (s *EventsService) ModifyChannel(ctx context.Context, id string, body any) error {
	_, err := s.client.call(ctx, http.MethodPatch, "/events/channels/"+seg(id), nil, body, nil)
	return err
}

// DeleteChannel cancels a channel and all its subscriptions.
func (s *EventsService) DeleteChannel(ctx context.Context, id string) error {
	_, err := s.client.call(ctx, http.MethodDelete, "/events/channels/"+seg(id), nil, nil, nil)
	return err
}

// ChannelSubscriptions lists a channel's subscriptions.
func (s *EventsService) ChannelSubscriptions(ctx context.Context, id string) (json.RawMessage, error) {
	return s.client.getRaw(ctx, "/events/channels/"+seg(id)+"/subscriptions", nil)
}

// Subscribe adds a subscription of eventType to a channel and returns the
// location of the new subscription, which also identifies it in events.
func (s *EventsService) Subscribe(ctx context.Context, channelID, eventType string, selector any) (string, error) {
	p := "/events/channels/" + seg(channelID) + "/subscriptions/" + seg(eventType)
	loc, err := s.client.create(ctx, p, selector)
	if err != nil {
		return "", fmt.Errorf("failed to subscribe: %w", err)
	}
	return loc, nil
}

// ChannelSubscription returns the selector of a subscription.
func (s *EventsService) ChannelSubscription(ctx context.Context, channelID, eventType, subscriptionID string) (json.RawMessage, error) {
	p := "/events/channels/" + seg(channelID) + "/subscriptions/" + seg(eventType) + "/" + seg(subscriptionID)
	return s.client.getRaw(ctx, p, nil)
}

// DeleteSubscription cancels a subscription.
func (s *EventsService) DeleteSubscription(ctx context.Context, channelID, eventType, subscriptionID string) error {
	p := "/events/channels/" + seg(channelID) + "/subscriptions/" + seg(eventType) + "/" + seg(subscriptionID)
	_, err := s.client.call(ctx, http.MethodDelete, p, nil, nil, nil)
	return err
}

// EventStream is an open server-sent events feed of a channel.
type EventStream struct {
	*sse.Reader
	body io.ReadCloser
}

func (s *EventStream) Close() error {
	return s.body.Close()
}

// Stream opens the event stream of the channel at location. The stream
// stays open until the server closes it, ctx is cancelled or Close is
// called.
func (s *EventsService) Stream(ctx context.Context, location string) (*EventStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &APIError{
			Method:     http.MethodGet,
			URL:        location,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	return &EventStream{Reader: sse.NewReader(resp.Body), body: resp.Body}, nil
}
