package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/metrics"
	"infinite-experiment/clanhall/internal/models"
	"infinite-experiment/clanhall/internal/services"
)

// Repairer is the part of the clan service the job drives.
type Repairer interface {
	GuildIDs(ctx context.Context) ([]models.ID, error)
	Repair(ctx context.Context, guildID models.ID, dryRun bool) (*services.RepairReport, error)
}

// RepairJob periodically reconciles users with clan rosters in every guild.
type RepairJob struct {
	svc     Repairer
	metrics *metrics.MetricsRegistry
	logger  *zap.SugaredLogger
}

func NewRepairJob(svc Repairer, reg *metrics.MetricsRegistry) *RepairJob {
	return &RepairJob{
		svc:     svc,
		metrics: reg,
		logger:  logging.WithComponent("repair_job"),
	}
}

// Run repairs every guild once. A failing guild is logged and skipped.
func (j *RepairJob) Run(ctx context.Context) ([]*services.RepairReport, error) {
	start := time.Now()
	defer func() {
		if j.metrics != nil {
			j.metrics.RepairJobDuration.WithLabelValues("repair").Observe(time.Since(start).Seconds())
		}
	}()

	guildIDs, err := j.svc.GuildIDs(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]*services.RepairReport, 0, len(guildIDs))
	total := 0
	for _, guildID := range guildIDs {
		if ctx.Err() != nil {
			return reports, ctx.Err()
		}
		report, err := j.RunGuild(ctx, guildID, false)
		if err != nil {
			continue
		}
		reports = append(reports, report)
		total += len(report.Actions)
	}

	j.logger.Infow("Repair pass complete",
		"guilds", len(guildIDs),
		"actions", total,
		"duration", time.Since(start).Truncate(time.Millisecond).String(),
	)
	return reports, nil
}

// RunGuild repairs a single guild.
func (j *RepairJob) RunGuild(ctx context.Context, guildID models.ID, dryRun bool) (*services.RepairReport, error) {
	report, err := j.svc.Repair(ctx, guildID, dryRun)
	if err != nil {
		j.logger.Errorw("Repair failed", "guild_id", guildID, "error", err)
		return nil, err
	}
	for _, a := range report.Actions {
		j.logger.Infow("Repair action",
			"guild_id", guildID,
			"rule", a.Rule,
			"user_id", a.UserID,
			"clan_id", a.ClanID,
			"detail", a.Detail,
			"dry_run", dryRun,
		)
	}
	return report, nil
}

// RunScheduled runs the job now and then every interval until ctx is done.
func (j *RepairJob) RunScheduled(ctx context.Context, interval time.Duration) {
	if _, err := j.Run(ctx); err != nil {
		j.logger.Errorw("Error in initial repair run", "error", err)
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				j.logger.Errorw("Error in scheduled repair run", "error", err)
			}
		case <-ctx.Done():
			j.logger.Info("Shutting down scheduled repair")
			return
		}
	}
}
