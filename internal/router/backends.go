package router

import (
	"context"
	"database/sql"
	"fmt"

	"idhealth/internal/adapters/auth/solidoidc"
	"idhealth/internal/adapters/model"
	"idhealth/internal/adapters/storage/memory"
	pg "idhealth/internal/adapters/storage/postgres"
	rd "idhealth/internal/adapters/storage/redis"
	"idhealth/internal/adapters/storage/solid"
	"idhealth/internal/config"
	"idhealth/internal/domain/profiles"
	"idhealth/internal/platform/httpclient"
	"idhealth/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

// FromConfig abre los backends elegidos en cfg. cleanup libera conexiones y
// nunca es nil.
func FromConfig(ctx context.Context, cfg config.Config, log logger.Logger) (opts Options, cleanup func(), err error) {
	var (
		db  *sql.DB
		rdb *redis.Client
	)
	cleanup = func() {
		if db != nil {
			_ = db.Close()
		}
		if rdb != nil {
			_ = rdb.Close()
		}
	}
	defer func() {
		if err != nil {
			cleanup()
			cleanup = func() {}
		}
	}()

	opts.Logger = log
	opts.Profiles = profiles.Options{TTL: cfg.Cache.SessionTTL, StorageOverride: cfg.Storage.Override}
	opts.DoctorPodHosts = cfg.Storage.DoctorPodHosts

	if cfg.Auth.Mode == config.AuthJWT {
		v, err := solidoidc.NewVerifier(solidoidc.Config{
			HMACSecret:   cfg.Auth.JWTSecret,
			PublicKeyPEM: cfg.Auth.PublicKey,
			Issuer:       cfg.Auth.Issuer,
			Audience:     cfg.Auth.Audience,
			Leeway:       cfg.Auth.Leeway,
		})
		if err != nil {
			return Options{}, cleanup, fmt.Errorf("auth verifier: %w", err)
		}
		opts.AuthVerifier = v
	}

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err = pg.Open(cfg.Storage.DSN)
		if err != nil {
			return Options{}, cleanup, fmt.Errorf("open postgres: %w", err)
		}
		if err = pg.EnsureSchema(ctx, db); err != nil {
			return Options{}, cleanup, fmt.Errorf("postgres schema: %w", err)
		}
		opts.Store = pg.NewPodStore(db)
	case config.BackendMemory:
		opts.Store = memory.NewPodStore()
	default:
		opts.Store = solid.NewStore(httpclient.New(cfg.Storage.Timeout))
	}

	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rdb, err = rd.Open(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			return Options{}, cleanup, fmt.Errorf("open redis: %w", err)
		}
		opts.Cache = rd.NewProfileCache(rdb)
	default:
		opts.Cache = memory.NewProfileCache()
	}

	if seeds := cfg.ProfileSeeds(); len(seeds) > 0 {
		popts := opts.Profiles
		popts.Cache = opts.Cache
		ps := profiles.NewService(opts.Store, log, popts)
		for _, sd := range seeds {
			if _, err = ps.Seed(ctx, sd.WebID, profiles.SeedInput{Role: profiles.Role(sd.Role)}); err != nil {
				return Options{}, cleanup, fmt.Errorf("seed profile %s: %w", sd.WebID, err)
			}
		}
	}

	mc := model.NewClient(cfg.ModelClientConfig())
	if mc.IsConfigured() {
		opts.Predictor = mc
		opts.Trainer = mc
	} else {
		log.Warn("model service not configured", nil)
	}

	log.Info("backends ready", map[string]any{
		"storage":          cfg.Storage.Backend,
		"cache":            cfg.Cache.Backend,
		"auth":             cfg.Auth.Mode,
		"doctor_pod_hosts": len(cfg.Storage.DoctorPodHosts),
	})
	return opts, cleanup, nil
}
