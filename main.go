package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accounthub/account-service/handlers"
	"github.com/accounthub/account-service/internal/account"
	"github.com/accounthub/account-service/internal/config"
	"github.com/accounthub/account-service/internal/database"
	"github.com/accounthub/account-service/internal/identity"
	"github.com/accounthub/account-service/internal/oidc"
	"github.com/accounthub/account-service/internal/server"
	"github.com/accounthub/account-service/internal/sessions"
	"github.com/accounthub/account-service/internal/users"
	"github.com/accounthub/account-service/pkg/logger"
	"github.com/accounthub/account-service/pkg/metrics"
	"github.com/accounthub/account-service/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.InitDev(cfg.Log.Level, cfg.Log.Dev)
	defer logger.Sync()
	logger.Infof("config loaded: driver=%s verifier=%s redis=%v", cfg.Database.Driver, cfg.Cognito.Verifier, cfg.Redis.Host != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatalf("account service: %v", err)
	}
	logger.Info("account service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	checks := map[string]handlers.Check{}

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	checks["database"] = repo.Ping

	rdb := connectRedis(ctx, cfg)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	blacklist := sessions.NewBlacklist(rdb)
	if rdb != nil {
		checks["redis"] = blacklist.Ping
	}

	idp, err := identity.NewCognito(ctx, identity.CognitoConfig{
		Region:       cfg.Cognito.Region,
		UserPoolID:   cfg.Cognito.UserPoolID,
		ClientID:     cfg.Cognito.ClientID,
		ClientSecret: cfg.Cognito.ClientSecret,
		Endpoint:     cfg.Cognito.Endpoint,
	})
	if err != nil {
		return err
	}

	verifier, closeVerifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeVerifier()

	svc := account.NewService(repo, idp, blacklist)
	router := server.NewRouter(cfg, server.Deps{
		Accounts:    svc,
		Verifier:    verifier,
		Revocations: blacklist,
		Redis:       rdb,
		Checks:      checks,
	})

	logger.Infof("starting account service on %s:%s", cfg.Server.Host, cfg.Server.Port)
	return server.New(cfg.Server, router).Run(ctx)
}

// openStore connects the configured profile store and returns a close func.
func openStore(ctx context.Context, cfg *config.Config) (users.Repository, func(), error) {
	if cfg.Database.Driver == config.DriverMongo {
		client, err := connectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection("users")
		if err := database.EnsureUserIndexes(ctx, col); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("ensure user indexes: %w", err)
		}
		logger.Infof("using MongoDB profile store (db=%s)", cfg.MongoDB.Database)
		return users.NewMongoRepository(col), func() { _ = client.Disconnect(context.Background()) }, nil
	}

	db, err := database.OpenSQL(ctx, cfg.Database.Driver, cfg.Database.URL, cfg.Database.Timeout, cfg.Database.Debug)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB, cfg.Database.Driver); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	logger.Infof("using %s profile store", cfg.Database.Driver)
	return users.NewBunRepository(db), func() { _ = db.Close() }, nil
}

// connectMongo retries with backoff to tolerate startup races.
func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("could not connect to MongoDB after %d attempts: %w", maxAttempts, lastErr)
}

// connectRedis returns nil when Redis is not configured or unreachable;
// token revocation and the shared rate limiter are then disabled.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		_ = client.Close()
		return nil
	}
	logger.Infof("connected to Redis at %s", addr)
	return client
}

func newVerifier(ctx context.Context, cfg *config.Config) (middleware.Verifier, func(), error) {
	noop := func() {}
	if cfg.Cognito.AllowInsecure {
		logger.Warn("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier(), noop, nil
	}
	if cfg.Cognito.Verifier == "discovery" {
		v, err := oidc.NewVerifier(ctx, cfg.Cognito.Issuer, cfg.Cognito.ClientID)
		if err != nil {
			return nil, nil, fmt.Errorf("init OIDC verifier: %w", err)
		}
		return v, noop, nil
	}
	v, err := oidc.NewJWKSVerifier(cfg.Cognito.JWKSURI, cfg.Cognito.Issuer, cfg.Cognito.ClientID)
	if err != nil {
		return nil, nil, fmt.Errorf("init JWKS verifier: %w", err)
	}
	return v, v.Close, nil
}
