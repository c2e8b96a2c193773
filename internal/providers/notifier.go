package providers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/models"
)

// Event types written to the notification stream.
const (
	EventInviteIssued     = "invite.issued"
	EventDisbandRequested = "disband.requested"
	EventDisbandResolved  = "disband.resolved"
)

// ErrNoApprovalSink is returned when a disband request has nowhere to go.
var ErrNoApprovalSink = errors.New("guild has no approval channel")

// EventPublisher appends an event to a named stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, payload any) (string, error)
}

// RedisStreamNotifier hands approval events to the bot through a Redis stream.
type RedisStreamNotifier struct {
	publisher EventPublisher
	stream    string
	logger    *zap.SugaredLogger
}

func NewRedisStreamNotifier(publisher EventPublisher) *RedisStreamNotifier {
	return &RedisStreamNotifier{
		publisher: publisher,
		stream:    constants.NotificationStream,
		logger:    logging.WithComponent("notifier"),
	}
}

func (n *RedisStreamNotifier) InviteIssued(ctx context.Context, event models.InviteEvent) error {
	return n.publish(ctx, EventInviteIssued, event.GuildID, event)
}

// DisbandRequested fails when the guild has no log channel, since nobody
// could see the approve and deny buttons.
func (n *RedisStreamNotifier) DisbandRequested(ctx context.Context, event models.DisbandEvent) error {
	if event.LogChannelID.IsZero() {
		return ErrNoApprovalSink
	}
	return n.publish(ctx, EventDisbandRequested, event.GuildID, event)
}

func (n *RedisStreamNotifier) DisbandResolved(ctx context.Context, event models.DisbandEvent) error {
	return n.publish(ctx, EventDisbandResolved, event.GuildID, event)
}

func (n *RedisStreamNotifier) publish(ctx context.Context, eventType string, guildID models.ID, payload any) error {
	id, err := n.publisher.Publish(ctx, n.stream, eventType, payload)
	if err != nil {
		n.logger.Warnw("Failed to publish notification", "type", eventType, "guild_id", guildID, "error", err)
		return err
	}
	n.logger.Debugw("Published notification", "type", eventType, "guild_id", guildID, "entry_id", id)
	return nil
}

// LogNotifier writes events to the log only. Disband requests are reported as
// undelivered so the pending marker is not left behind.
type LogNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logging.WithComponent("notifier")}
}

func (n *LogNotifier) InviteIssued(ctx context.Context, event models.InviteEvent) error {
	n.logger.Infow("Invite issued",
		"guild_id", event.GuildID,
		"clan_id", event.ClanID,
		"inviter_id", event.InviterID,
		"invitee_id", event.InviteeID,
	)
	return nil
}

func (n *LogNotifier) DisbandRequested(ctx context.Context, event models.DisbandEvent) error {
	n.logger.Warnw("Disband requested but no approval sink is configured",
		"guild_id", event.GuildID,
		"clan_id", event.ClanID,
		"requested_by", event.RequestedBy,
	)
	return ErrNoApprovalSink
}

func (n *LogNotifier) DisbandResolved(ctx context.Context, event models.DisbandEvent) error {
	n.logger.Infow("Disband resolved",
		"guild_id", event.GuildID,
		"clan_id", event.ClanID,
		"approved", event.Approved,
		"resolved_by", event.ResolvedBy,
	)
	return nil
}
