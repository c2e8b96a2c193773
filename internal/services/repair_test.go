package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/models"
)

func TestRepair_ConsistentGuildIsUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.setUp(t)
	env.createClan(t, "A", "Red Team")
	env.join(t, "A", "B")

	writes := env.backend.writesTo(constants.CollectionUsers)
	report, err := env.svc.Repair(context.Background(), testGuild, false)
	require.NoError(t, err)

	assert.Empty(t, report.Actions)
	assert.Equal(t, writes, env.backend.writesTo(constants.CollectionUsers))
}

func TestRepair_InterruptedAccept(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setUp(t)
	clan := env.createClan(t, "A", "Red Team")

	// clan write landed, user write did not
	clan.AddMember("B")
	require.NoError(t, env.clans.Save(ctx, clan))

	report, err := env.svc.Repair(ctx, testGuild, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(RuleRelinked))
	b := env.user(t, "B")
	assert.Equal(t, clan.ID, b.ClanID)
	assert.Equal(t, constants.RoleMember, b.Role)
	assert.Equal(t, 1.0, counterValue(t, env.metrics.RepairActionsTotal.WithLabelValues(RuleRelinked)))
	env.requireConsistent(t)
}

func TestRepair_InterruptedLeave(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setUp(t)
	clan := env.createClan(t, "A", "Red Team")
	env.join(t, "A", "B")

	clan = env.clan(t, clan.ID)
	clan.RemoveFromRoles("B")
	require.NoError(t, env.clans.Save(ctx, clan))

	report, err := env.svc.Repair(ctx, testGuild, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(RuleUnlistedMember))
	assert.Equal(t, models.StateUnaffiliated, env.user(t, "B").State())
	env.requireConsistent(t)
}

func TestRepair_MissingClanAndStaleInvite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setUp(t)
	clan := env.createClan(t, "A", "Red Team")
	_, err := env.svc.Invite(ctx, actor("A"), "C")
	require.NoError(t, err)

	// clan deleted, user resets never happened
	_, err = env.clans.Delete(ctx, clan.ID)
	require.NoError(t, err)

	report, err := env.svc.Repair(ctx, testGuild, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(RuleMissingClan))
	assert.Equal(t, 1, report.Count(RuleStaleInvite))
	assert.Equal(t, models.StateUnaffiliated, env.user(t, "A").State())
	assert.Equal(t, models.StateUnaffiliated, env.user(t, "C").State())
	env.requireConsistent(t)
}

func TestRepair_RoleMismatchAndOverlap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setUp(t)
	clan := env.createClan(t, "A", "Red Team")
	env.join(t, "A", "B")

	clan = env.clan(t, clan.ID)
	clan.CoLeaderIDs = append(clan.CoLeaderIDs, "B")
	require.NoError(t, env.clans.Save(ctx, clan))

	report, err := env.svc.Repair(ctx, testGuild, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(RuleRosterOverlap))
	assert.Equal(t, 1, report.Count(RuleRoleMismatch))
	clan = env.clan(t, clan.ID)
	assert.Equal(t, []models.ID{"B"}, clan.CoLeaderIDs)
	assert.Empty(t, clan.MemberIDs)
	assert.Equal(t, constants.RoleCoLeader, env.user(t, "B").Role)
	env.requireConsistent(t)
}

func TestRepair_DanglingRosterEntry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setUp(t)
	red := env.createClan(t, "A", "Red Team")
	blue := env.createClan(t, "X", "Blue Team")
	env.join(t, "A", "B")

	blue = env.clan(t, blue.ID)
	blue.AddMember("B")
	require.NoError(t, env.clans.Save(ctx, blue))

	report, err := env.svc.Repair(ctx, testGuild, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(RuleDanglingRoster))
	assert.False(t, env.clan(t, blue.ID).Has("B"))
	assert.Equal(t, red.ID, env.user(t, "B").ClanID)
	env.requireConsistent(t)
}

func TestRepair_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setUp(t)
	clan := env.createClan(t, "A", "Red Team")
	clan.AddMember("B")
	require.NoError(t, env.clans.Save(ctx, clan))

	users := env.backend.writesTo(constants.CollectionUsers)
	clans := env.backend.writesTo(constants.CollectionClans)

	report, err := env.svc.Repair(ctx, testGuild, true)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Count(RuleRelinked))
	assert.Equal(t, users, env.backend.writesTo(constants.CollectionUsers))
	assert.Equal(t, clans, env.backend.writesTo(constants.CollectionClans))
	assert.Equal(t, 0.0, counterValue(t, env.metrics.RepairActionsTotal.WithLabelValues(RuleRelinked)))
}

func TestGuildIDs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setUp(t)
	env.createClan(t, "A", "Red Team")

	_, err := env.users.GetOrCreate(ctx, "guild-2", "Z")
	require.NoError(t, err)

	ids, err := env.svc.GuildIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ID{testGuild, "guild-2"}, ids)
}
