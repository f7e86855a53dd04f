package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 5 * time.Second

// DB bundles the two stores every module is built on
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
}

// InitDB connects to postgres, migrates the schema and connects to Redis.
// A failure at any step closes whatever was already opened.
func InitDB(cfg *config.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*connectTimeout)
	defer cancel()

	db := &DB{}

	pg, err := openPostgres(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	db.PostgreSQL = pg

	if err := Migrate(pg.WithContext(ctx)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb, err := openRedis(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	db.Redis = rdb

	return db, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:      newGormLogger(logger.GetDefault(), level),
		NowFunc:     func() time.Time { return time.Now().UTC() },
		PrepareStmt: true,
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.GetDefault().Info("PostgreSQL connected",
		"host", cfg.Database.Host,
		"database", cfg.Database.Name,
		"max_open_conns", cfg.Database.MaxOpenConns,
	)
	return db, nil
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.PoolSize / 2,
		DialTimeout:  connectTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.GetDefault().Info("Redis connected", "addr", cfg.Addr, "pool_size", cfg.PoolSize)
	return rdb, nil
}

// Close closes both connections and reports every failure
func (db *DB) Close() error {
	var errs []error

	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close postgres: %w", err))
			}
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

// HealthCheck pings postgres and Redis concurrently. Both are always
// checked so the error names every store that is down.
func (db *DB) HealthCheck(ctx context.Context) error {
	var pgErr, redisErr error
	var g errgroup.Group

	if db.PostgreSQL != nil {
		g.Go(func() error {
			sqlDB, err := db.PostgreSQL.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				pgErr = fmt.Errorf("postgres: %w", err)
			}
			return nil
		})
	}
	if db.Redis != nil {
		g.Go(func() error {
			if err := db.Redis.Ping(ctx).Err(); err != nil {
				redisErr = fmt.Errorf("redis: %w", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(pgErr, redisErr)
}
