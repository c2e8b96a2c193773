package api

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/config"
	"infinite-experiment/clanhall/internal/db"
	"infinite-experiment/clanhall/internal/db/repositories"
	"infinite-experiment/clanhall/internal/docstore"
	"infinite-experiment/clanhall/internal/jobs"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/metrics"
	"infinite-experiment/clanhall/internal/providers"
	"infinite-experiment/clanhall/internal/services"
)

type Repositories struct {
	Clans   *repositories.ClanRepository
	Users   *repositories.UserRepository
	Configs *repositories.GuildConfigRepository
	Keys    *repositories.KeysRepo
}

type Services struct {
	Cache     common.CacheInterface
	Signer    *common.ActionSigner
	Clans     *services.ClanService
	Approvals *services.ApprovalService
	Repair    *jobs.RepairJob
}

type Dependencies struct {
	Specs    *config.EnvSpec
	Store    *docstore.Store
	Redis    *redis.Client
	Metrics  *metrics.MetricsRegistry
	Repo     *Repositories
	Services *Services
	UpSince  time.Time
}

// InitDependencies opens the store and builds every service from specs.
// Metrics are registered with reg.
func InitDependencies(ctx context.Context, specs *config.EnvSpec, reg prometheus.Registerer) (*Dependencies, error) {
	metricsReg := metrics.NewMetricsRegistry(reg)

	var redisClient *redis.Client
	if specs.RedisAddr != "" {
		redisClient = common.NewRedisClient(specs.RedisAddr, specs.RedisPassword, specs.RedisDB)
	}

	backend, err := db.OpenBackend(specs, redisClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", specs.StoreBackend, err)
	}

	store := docstore.New(backend, docstore.WithMetrics(metricsReg))
	if err := repositories.RegisterCollections(store); err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		logging.Warn("Store backend did not answer ping", "backend", specs.StoreBackend, "error", err)
	}

	repos := &Repositories{
		Clans:   repositories.NewClanRepository(store),
		Users:   repositories.NewUserRepository(store),
		Configs: repositories.NewGuildConfigRepository(store),
		Keys:    repositories.NewApiKeysRepo(store),
	}

	var cache common.CacheInterface
	if redisClient != nil {
		cache = common.NewRedisCacheService(redisClient, specs.RedisPrefix+":cache:")
	} else {
		cache = common.NewCacheService(specs.KeyCacheTTL, 10*time.Minute)
	}

	secret := []byte(specs.ActionTokenSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate action token secret: %w", err)
		}
		logging.Warn("ACTION_TOKEN_SECRET not set, pending approval buttons stop working on restart")
	}
	signer := common.NewActionSigner(secret, specs.ActionTokenTTL, cache)

	var provisioner services.AssetProvisioner = providers.NoopProvisioner{}
	if specs.PlatformBaseURL != "" {
		provisioner = providers.NewPlatformProvider(specs.PlatformBaseURL, specs.PlatformAPIKey, specs.PlatformTimeout)
	} else {
		logging.Warn("PLATFORM_BASE_URL not set, clan roles and channels will not be provisioned")
	}

	var notifier services.Notifier
	audit := providers.MultiAudit{providers.NewZapAudit()}
	if redisClient != nil {
		publisher := common.NewStreamPublisher(redisClient, specs.StreamMaxLen)
		notifier = providers.NewRedisStreamNotifier(publisher)
		audit = append(audit, providers.NewRedisAudit(publisher))
	} else {
		notifier = providers.NewLogNotifier()
	}

	clanSvc := services.NewClanService(repos.Clans, repos.Users, repos.Configs, provisioner, notifier, audit, signer, metricsReg)

	svcs := &Services{
		Cache:     cache,
		Signer:    signer,
		Clans:     clanSvc,
		Approvals: services.NewApprovalService(clanSvc, signer),
		Repair:    jobs.NewRepairJob(clanSvc, metricsReg),
	}

	return &Dependencies{
		Specs:    specs,
		Store:    store,
		Redis:    redisClient,
		Metrics:  metricsReg,
		Repo:     repos,
		Services: svcs,
		UpSince:  time.Now(),
	}, nil
}

// Close releases the store and the Redis connection.
func (d *Dependencies) Close() error {
	var firstErr error
	if err := d.Store.Close(); err != nil {
		firstErr = err
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
