package providers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/models"
)

// AuditRecorder matches services.AuditLog.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// ZapAudit writes audit entries to the structured log.
type ZapAudit struct {
	logger *zap.SugaredLogger
}

func NewZapAudit() *ZapAudit {
	return &ZapAudit{logger: logging.WithComponent("audit")}
}

func (a *ZapAudit) Record(ctx context.Context, entry models.AuditEntry) {
	a.logger.Infow(entry.Message,
		"action", entry.Action,
		"guild_id", entry.GuildID,
		"actor_id", entry.ActorID,
		"target_id", entry.TargetID,
		"clan_id", entry.ClanID,
	)
}

// RedisAudit appends entries to the audit stream. Publishing happens with a
// short timeout detached from the request so a slow Redis never stalls a
// clan operation.
type RedisAudit struct {
	publisher EventPublisher
	stream    string
	timeout   time.Duration
}

func NewRedisAudit(publisher EventPublisher) *RedisAudit {
	return &RedisAudit{
		publisher: publisher,
		stream:    constants.AuditStream,
		timeout:   2 * time.Second,
	}
}

func (a *RedisAudit) Record(ctx context.Context, entry models.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	if _, err := a.publisher.Publish(ctx, a.stream, entry.Action, entry); err != nil {
		logging.Warn("Failed to write audit entry",
			"action", entry.Action,
			"guild_id", entry.GuildID,
			"error", err,
		)
	}
}

// MultiAudit fans one entry out to every recorder.
type MultiAudit []AuditRecorder

func (m MultiAudit) Record(ctx context.Context, entry models.AuditEntry) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, entry)
		}
	}
}
