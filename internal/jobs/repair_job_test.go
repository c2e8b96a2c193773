package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/clanhall/internal/metrics"
	"infinite-experiment/clanhall/internal/models"
	"infinite-experiment/clanhall/internal/services"
)

type fakeRepairer struct {
	mu      sync.Mutex
	guilds  []models.ID
	failFor models.ID
	runs    []models.ID
}

func (f *fakeRepairer) GuildIDs(ctx context.Context) ([]models.ID, error) {
	return f.guilds, nil
}

func (f *fakeRepairer) Repair(ctx context.Context, guildID models.ID, dryRun bool) (*services.RepairReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, guildID)
	if guildID == f.failFor {
		return nil, errors.New("backend down")
	}
	return &services.RepairReport{
		GuildID: guildID,
		DryRun:  dryRun,
		Actions: []services.RepairAction{{Rule: services.RuleRelinked, UserID: "u1"}},
	}, nil
}

func (f *fakeRepairer) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

func TestRepairJob_RunSkipsFailingGuild(t *testing.T) {
	fake := &fakeRepairer{guilds: []models.ID{"g1", "g2", "g3"}, failFor: "g2"}
	job := NewRepairJob(fake, metrics.NewMetricsRegistry(prometheus.NewRegistry()))

	reports, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.ID{"g1", "g2", "g3"}, fake.runs)
	require.Len(t, reports, 2)
	assert.Equal(t, models.ID("g1"), reports[0].GuildID)
	assert.Equal(t, models.ID("g3"), reports[1].GuildID)
}

func TestRepairJob_RunStopsOnCancel(t *testing.T) {
	fake := &fakeRepairer{guilds: []models.ID{"g1", "g2"}}
	job := NewRepairJob(fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := job.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.runs)
}

func TestRepairJob_RunScheduled(t *testing.T) {
	fake := &fakeRepairer{guilds: []models.ID{"g1"}}
	job := NewRepairJob(fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.RunScheduled(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return fake.runCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunScheduled did not stop after cancel")
	}
}
