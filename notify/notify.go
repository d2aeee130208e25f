// Package notify fans committed roster events out to participants.
//
// Every notifier runs after the store transaction has committed. A failed
// notification is reported to the caller, which logs it; it never reverses
// the transition.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	pubnub "github.com/pubnub/go"
	"github.com/rs/zerolog"
	"github.com/warp/formation-engine/roster"
)

// =============================================================================
// PUBNUB NOTIFIER
// =============================================================================

// Publisher sends one message to one channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message map[string]any) error
}

// PubNub publishes each event on the participant's personal channel,
// user-<participant>.
type PubNub struct {
	publisher Publisher
}

func NewPubNub(publisher Publisher) *PubNub {
	return &PubNub{publisher: publisher}
}

// ChannelFor returns the channel a participant subscribes to.
func ChannelFor(participant roster.Identity) string {
	return fmt.Sprintf("user-%s", participant)
}

func (n *PubNub) Notify(ctx context.Context, ev roster.Event) error {
	return n.publisher.Publish(ctx, ChannelFor(ev.Participant), Message(ev))
}

// Message renders an event as the payload sent to clients.
func Message(ev roster.Event) map[string]any {
	msg := map[string]any{
		"type":        string(ev.Type),
		"offering_id": string(ev.OfferingID),
		"position":    ev.Position,
		"at":          ev.At.UTC().Format(time.RFC3339),
	}
	if ev.SessionID != "" {
		msg["session_id"] = string(ev.SessionID)
	}
	return msg
}

// ClientPublisher adapts a PubNub client to Publisher.
type ClientPublisher struct {
	client *pubnub.PubNub
}

// NewClientPublisher configures a PubNub client from its keys.
func NewClientPublisher(publishKey, subscribeKey, secretKey, uuid string) *ClientPublisher {
	cfg := pubnub.NewConfig()
	cfg.PublishKey = publishKey
	cfg.SubscribeKey = subscribeKey
	cfg.SecretKey = secretKey
	if uuid != "" {
		cfg.UUID = uuid
	}
	return &ClientPublisher{client: pubnub.NewPubNub(cfg)}
}

func (p *ClientPublisher) Publish(_ context.Context, channel string, message map[string]any) error {
	_, _, err := p.client.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// =============================================================================
// LOG NOTIFIER
// =============================================================================

// Log writes each event to the logger. Used when no PubNub keys are set.
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "notify").Logger()}
}

func (n *Log) Notify(_ context.Context, ev roster.Event) error {
	n.logger.Info().
		Str("event", string(ev.Type)).
		Str("offering_id", string(ev.OfferingID)).
		Str("participant", string(ev.Participant)).
		Uint8("position", ev.Position).
		Time("at", ev.At).
		Msg("roster event")
	return nil
}

// =============================================================================
// FAN-OUT
// =============================================================================

// Multi delivers to every notifier and joins their errors.
type Multi []roster.Notifier

func (m Multi) Notify(ctx context.Context, ev roster.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ roster.Notifier = (*PubNub)(nil)
	_ roster.Notifier = (*Log)(nil)
	_ roster.Notifier = Multi(nil)
)
