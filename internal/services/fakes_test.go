package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/db/repositories"
	"infinite-experiment/clanhall/internal/docstore"
	"infinite-experiment/clanhall/internal/metrics"
	"infinite-experiment/clanhall/internal/models"
)

const testGuild = models.ID("guild-1")

var errPlatformDown = errors.New("platform unavailable")

type roleCall struct {
	userID models.ID
	roles  []models.ID
}

type fakeAssets struct {
	mu          sync.Mutex
	granted     []roleCall
	revoked     []roleCall
	deleted     []models.ClanAssets
	colors      map[models.ID]string
	renamed     map[models.ID]string
	visibility  map[models.ID]bool
	grantErr    error
	createErr   error
	colorErr    error
	setupResult *models.GuildAssets
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{
		colors:     map[models.ID]string{},
		renamed:    map[models.ID]string{},
		visibility: map[models.ID]bool{},
	}
}

func (f *fakeAssets) SetupGuild(ctx context.Context, guildID models.ID) (*models.GuildAssets, error) {
	return f.setupResult, nil
}

func (f *fakeAssets) CreateClanAssets(ctx context.Context, req models.ClanAssetRequest) (*models.ClanAssets, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.ClanAssets{
		RoleID:        models.ID("role-" + req.ClanTag),
		TextChannelID: models.ID("text-" + req.ClanTag),
	}, nil
}

func (f *fakeAssets) DeleteClanAssets(ctx context.Context, guildID models.ID, assets models.ClanAssets) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, assets)
	return nil
}

func (f *fakeAssets) GrantRoles(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.granted = append(f.granted, roleCall{userID: userID, roles: roleIDs})
	return f.grantErr
}

func (f *fakeAssets) RevokeRoles(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, roleCall{userID: userID, roles: roleIDs})
	return nil
}

func (f *fakeAssets) SetClanColor(ctx context.Context, guildID, roleID models.ID, color string) error {
	if f.colorErr != nil {
		return f.colorErr
	}
	f.colors[roleID] = color
	return nil
}

func (f *fakeAssets) RenameClanChannel(ctx context.Context, guildID, channelID models.ID, name string) error {
	f.renamed[channelID] = name
	return nil
}

func (f *fakeAssets) SetClanVisibility(ctx context.Context, guildID, channelID models.ID, visible bool) error {
	f.visibility[channelID] = visible
	return nil
}

func (f *fakeAssets) grantsFor(userID models.ID) []models.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ID
	for _, c := range f.granted {
		if c.userID == userID {
			out = append(out, c.roles...)
		}
	}
	return out
}

type fakeNotifier struct {
	mu          sync.Mutex
	invites     []models.InviteEvent
	requests    []models.DisbandEvent
	resolutions []models.DisbandEvent
	err         error
}

func (f *fakeNotifier) InviteIssued(ctx context.Context, event models.InviteEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites = append(f.invites, event)
	return f.err
}

func (f *fakeNotifier) DisbandRequested(ctx context.Context, event models.DisbandEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, event)
	return f.err
}

func (f *fakeNotifier) DisbandResolved(ctx context.Context, event models.DisbandEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolutions = append(f.resolutions, event)
	return f.err
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (f *fakeAudit) Record(ctx context.Context, entry models.AuditEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

// countingBackend counts writes per collection and can be told to fail them.
type countingBackend struct {
	*docstore.MemoryBackend
	mu        sync.Mutex
	writes    map[string]int
	failWrite bool
}

func newCountingBackend() *countingBackend {
	return &countingBackend{MemoryBackend: docstore.NewMemoryBackend(), writes: map[string]int{}}
}

func (b *countingBackend) Write(ctx context.Context, collection string, data []byte) error {
	b.mu.Lock()
	fail := b.failWrite
	b.writes[collection]++
	b.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Write(ctx, collection, data)
}

func (b *countingBackend) writesTo(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes[collection]
}

func (b *countingBackend) setFailWrites(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrite = fail
}

type testEnv struct {
	backend  *countingBackend
	store    *docstore.Store
	clans    *repositories.ClanRepository
	users    *repositories.UserRepository
	configs  *repositories.GuildConfigRepository
	assets   *fakeAssets
	notifier *fakeNotifier
	audit    *fakeAudit
	signer   *common.ActionSigner
	metrics  *metrics.MetricsRegistry
	svc      *ClanService
	approval *ApprovalService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		backend:  newCountingBackend(),
		assets:   newFakeAssets(),
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
		metrics:  metrics.NewMetricsRegistry(prometheus.NewRegistry()),
	}
	env.store = docstore.New(env.backend)
	require.NoError(t, repositories.RegisterCollections(env.store))

	env.clans = repositories.NewClanRepository(env.store)
	env.users = repositories.NewUserRepository(env.store)
	env.configs = repositories.NewGuildConfigRepository(env.store)
	env.signer = common.NewActionSigner([]byte("test-secret"), time.Hour, common.NewCacheService(time.Hour, time.Minute))
	env.svc = NewClanService(env.clans, env.users, env.configs, env.assets, env.notifier, env.audit, env.signer, env.metrics)
	env.approval = NewApprovalService(env.svc, env.signer)
	return env
}

func actor(userID string) Actor {
	return Actor{GuildID: testGuild, UserID: models.ID(userID)}
}

func admin(userID string) Actor {
	return Actor{GuildID: testGuild, UserID: models.ID(userID), IsAdmin: true}
}

// setUp configures the guild the way the setup command would.
func (env *testEnv) setUp(t *testing.T) *models.GuildConfig {
	t.Helper()
	cfg, err := env.svc.Setup(context.Background(), admin("admin"), &models.GuildAssets{
		LogChannelID:           "log-channel",
		ClanChannelsCategoryID: "clan-category",
		ClanLogsCategoryID:     "clan-logs",
		LeaderRoleID:           "leader-role",
		CoLeaderRoleID:         "co-leader-role",
	})
	require.NoError(t, err)
	return cfg
}

func (env *testEnv) createClan(t *testing.T, leader, name string) *models.Clan {
	t.Helper()
	clan, err := env.svc.Create(context.Background(), actor(leader), name)
	require.NoError(t, err)
	return clan
}

// join invites and accepts userID into the leader's clan.
func (env *testEnv) join(t *testing.T, leader, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := env.svc.Invite(ctx, actor(leader), models.ID(userID))
	require.NoError(t, err)
	_, err = env.svc.AcceptInvite(ctx, actor(userID), "")
	require.NoError(t, err)
}

func (env *testEnv) user(t *testing.T, userID string) *models.User {
	t.Helper()
	u, err := env.users.FindByUserID(context.Background(), testGuild, models.ID(userID))
	require.NoError(t, err)
	require.NotNil(t, u, "user %s", userID)
	return u
}

func (env *testEnv) clan(t *testing.T, id models.ID) *models.Clan {
	t.Helper()
	c, err := env.clans.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

// requireConsistent checks the roster invariants across every clan and user.
func (env *testEnv) requireConsistent(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	clans, err := env.clans.ListAll(ctx)
	require.NoError(t, err)
	users, err := env.users.ListAll(ctx)
	require.NoError(t, err)
	cfg, err := env.configs.GetOrCreate(ctx, testGuild)
	require.NoError(t, err)

	seen := map[models.ID]models.ID{}
	byID := map[models.ID]models.Clan{}
	for _, c := range clans {
		byID[c.ID] = c
		require.False(t, c.LeaderID.IsZero(), "clan %s has no leader", c.ID)
		require.LessOrEqual(t, c.MemberCount(), cfg.MemberLimit())
		for _, id := range c.AllMemberIDs() {
			prev, dup := seen[id]
			require.False(t, dup, "user %s in clans %s and %s", id, prev, c.ID)
			seen[id] = c.ID
		}
		require.Equal(t, c.MemberCount(), len(c.AllMemberIDs()), "role sets overlap in %s", c.ID)
	}
	for _, u := range users {
		if !u.InClan() {
			require.Equal(t, constants.RoleNone, u.Role)
			continue
		}
		c, ok := byID[u.ClanID]
		require.True(t, ok, "user %s points at missing clan", u.UserID)
		require.Equal(t, c.RoleOf(u.UserID), u.Role, "user %s role", u.UserID)
		require.True(t, u.PendingInviteClanID.IsZero())
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
