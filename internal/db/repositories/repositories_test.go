package repositories

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/docstore"
	"infinite-experiment/clanhall/internal/models"
)

func setupStore(t *testing.T) (*docstore.Store, *docstore.MemoryBackend) {
	t.Helper()
	backend := docstore.NewMemoryBackend()
	store := docstore.New(backend, docstore.WithLogger(zap.NewNop().Sugar()))
	if err := RegisterCollections(store); err != nil {
		t.Fatalf("Failed to register collections: %v", err)
	}
	return store, backend
}

func TestClanRepository_CreateAppliesDefaults(t *testing.T) {
	store, _ := setupStore(t)
	repo := NewClanRepository(store)
	ctx := context.Background()

	clan, err := repo.Create(ctx, &models.Clan{GuildID: "g1", Name: "Red Team", Tag: "REDTEAM", LeaderID: "a"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if clan.ID.IsZero() || clan.CreatedAt.IsZero() {
		t.Errorf("expected id and createdAt to be assigned, got %+v", clan)
	}
	if clan.CoLeaderIDs == nil || clan.MemberIDs == nil || clan.Bounty != 0 || clan.Visible {
		t.Errorf("expected defaults, got %+v", clan)
	}

	byTag, err := repo.FindByNameOrTag(ctx, "g1", "redteam")
	if err != nil || byTag == nil || byTag.ID != clan.ID {
		t.Fatalf("expected lookup by lowercase tag to succeed, got %v, %v", byTag, err)
	}
	byName, err := repo.FindByNameOrTag(ctx, "g1", "Red Team")
	if err != nil || byName == nil {
		t.Fatalf("expected lookup by name to succeed, got %v", err)
	}
	other, err := repo.FindByNameOrTag(ctx, "g2", "Red Team")
	if err != nil || other != nil {
		t.Errorf("expected other guild lookup to miss, got %v", other)
	}
}

func TestClanRepository_SaveRefreshesAndDelete(t *testing.T) {
	store, _ := setupStore(t)
	repo := NewClanRepository(store)
	ctx := context.Background()

	clan, err := repo.Create(ctx, &models.Clan{GuildID: "g1", Name: "A", Tag: "A", LeaderID: "a"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	clan.AddMember("b")
	if err := repo.Save(ctx, clan); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.FindByID(ctx, clan.ID)
	if err != nil || got == nil || !got.IsMember("b") {
		t.Fatalf("expected member b to persist, got %+v, %v", got, err)
	}

	deleted, err := repo.Delete(ctx, clan.ID)
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v, %v", deleted, err)
	}
	gone, _ := repo.FindByID(ctx, clan.ID)
	if gone != nil {
		t.Errorf("expected clan to be gone")
	}
}

func TestUserRepository_GetOrCreateIsSingleFlight(t *testing.T) {
	store, _ := setupStore(t)
	repo := NewUserRepository(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetOrCreate(ctx, "g1", "u1"); err != nil {
				t.Errorf("GetOrCreate failed: %v", err)
			}
		}()
	}
	wg.Wait()

	n, err := store.Count(ctx, constants.CollectionUsers, docstore.Eq("userId", "u1"))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected exactly one user record, got %d", n)
	}
}

func TestUserRepository_ResetMany(t *testing.T) {
	store, _ := setupStore(t)
	repo := NewUserRepository(store)
	ctx := context.Background()

	for _, id := range []models.ID{"a", "b", "c"} {
		u, err := repo.GetOrCreate(ctx, "g1", id)
		if err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
		u.JoinClan("c1", constants.RoleMember)
		if err := repo.Save(ctx, u); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	n, err := repo.ResetMany(ctx, "g1", []models.ID{"a", "c"})
	if err != nil {
		t.Fatalf("ResetMany failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 resets, got %d", n)
	}

	members, err := repo.ListByClan(ctx, "g1", "c1")
	if err != nil {
		t.Fatalf("ListByClan failed: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "b" {
		t.Errorf("expected only b to remain, got %+v", members)
	}
}

func TestGuildConfigRepository_GetOrCreateDefaults(t *testing.T) {
	store, _ := setupStore(t)
	repo := NewGuildConfigRepository(store)
	ctx := context.Background()

	cfg, err := repo.GetOrCreate(ctx, "g1")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if cfg.ClanMemberLimit != constants.DefaultClanMemberLimit {
		t.Errorf("expected default limit, got %d", cfg.ClanMemberLimit)
	}

	cfg.ClanMemberLimit = 20
	if err := repo.Save(ctx, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	again, err := repo.GetOrCreate(ctx, "g1")
	if err != nil || again.ClanMemberLimit != 20 || again.ID != cfg.ID {
		t.Errorf("expected saved config, got %+v, %v", again, err)
	}
}

func TestKeysRepo_CreateAndRevoke(t *testing.T) {
	store, _ := setupStore(t)
	repo := NewApiKeysRepo(store)
	ctx := context.Background()

	key, err := repo.Create(ctx, "bot")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	status, err := repo.GetStatus(ctx, key.Key)
	if err != nil || !status.Active {
		t.Fatalf("expected active key, got %+v, %v", status, err)
	}

	revoked, err := repo.Revoke(ctx, key.Key)
	if err != nil || !revoked {
		t.Fatalf("expected revoke, got %v, %v", revoked, err)
	}
	status, _ = repo.GetStatus(ctx, key.Key)
	if status.Active {
		t.Errorf("expected inactive key after revoke")
	}

	if _, err := repo.GetStatus(ctx, "nope"); err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}
