package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/agrimint/ussd-service/internal/config"
	"github.com/agrimint/ussd-service/internal/db"
	"github.com/agrimint/ussd-service/internal/redis"
	"github.com/agrimint/ussd-service/internal/session"
)

// setupStore builds the session store named by cfg.SessionStore and
// returns it with a cleanup closing whatever was opened.
func setupStore(ctx context.Context, cfg config.Config, log *slog.Logger) (session.Store, func() error, error) {
	switch cfg.SessionStore {

	case "memory":
		return session.NewMemoryStore(), func() error { return nil }, nil

	case "redis":
		client, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		log.Info("redis ready", "addr", cfg.RedisAddr)
		return session.NewRedisStore(client.Client, cfg.SessionTTL), client.Close, nil

	case "postgres":
		sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, nil, err
		}
		if err := db.RunSessionsMigration(ctx, sqlDB); err != nil {
			return nil, nil, err
		}
		log.Info("database ready")
		return session.NewPostgresStore(sqlDB), sqlDB.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}
