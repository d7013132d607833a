package builder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ryooooooya/shogi-ganbaru/internal/config"
	"github.com/ryooooooya/shogi-ganbaru/internal/engine"
	"github.com/ryooooooya/shogi-ganbaru/internal/evalcache"
	svckifu "github.com/ryooooooya/shogi-ganbaru/internal/service/kifu"
)

type Deps struct {
	Service *svckifu.Service
	Repo    svckifu.Repository
	Engine  *engine.Client // nil 可
	Cache   *evalcache.Store

	db  *sql.DB
	rdb *redis.Client
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	deps := &Deps{}

	// Repository (DB は任意。未設定ならメモリで動かす)
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		deps.db = db
		deps.Repo = svckifu.NewRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, kifu are kept in memory only")
		deps.Repo = svckifu.NewMemoryRepository()
	}

	// 解析キャッシュ (Redis は任意)
	if strings.TrimSpace(cfg.RedisURL) != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		deps.rdb = rdb
		deps.Cache = evalcache.NewStore(rdb, time.Duration(cfg.EvalCacheTTLSec)*time.Second)
	}

	// 解析エンジン (任意。未設定なら解析系の操作だけ使えない)
	if strings.TrimSpace(cfg.EngineBaseURL) != "" {
		deps.Engine = engine.NewClient(cfg.EngineBaseURL)
	}

	// interface に nil の具象ポインタを入れない
	var analyzer svckifu.Analyzer
	if deps.Engine != nil {
		analyzer = deps.Engine
	}
	var cache svckifu.AnalysisCache
	if deps.Cache != nil {
		cache = deps.Cache
	}

	svcCfg := svckifu.Config{
		TrackedName: cfg.MyName,
		RecentLimit: cfg.RecentLimit,
	}
	service, err := svckifu.NewService(deps.Repo, analyzer, cache, svcCfg, logger)
	if err != nil {
		return nil, err
	}
	deps.Service = service

	return deps, nil
}

// Close は保持している接続を閉じる。
func (d *Deps) Close() {
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}
