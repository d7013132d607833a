package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	HTTPAddr string

	// MyName は棋譜内で自分を指す対局者名。空なら手番は常に不明扱い。
	MyName string

	RedisURL    string
	DatabaseURL string

	EngineBaseURL string

	AnalyzeIntervalSec int
	AnalyzeBatch       int
	RecentLimit        int
	EvalCacheTTLSec    int

	MsgcatDir string
}

func Load() (*AppConfig, error) {
	// .env はあれば読む。無くてもエラーにしない。
	_ = godotenv.Load()

	cfg := &AppConfig{
		HTTPAddr:           ":8787",
		AnalyzeIntervalSec: 300,
		AnalyzeBatch:       5,
		RecentLimit:        30,
		EvalCacheTTLSec:    86400,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.MyName = strings.TrimSpace(os.Getenv("MY_NAME"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.EngineBaseURL = strings.TrimSpace(os.Getenv("ENGINE_BASE_URL"))

	if v := strings.TrimSpace(os.Getenv("ANALYZE_INTERVAL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnalyzeIntervalSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ANALYZE_BATCH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnalyzeBatch = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("RECENT_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RecentLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("EVAL_CACHE_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EvalCacheTTLSec = n
		}
	}

	cfg.MsgcatDir = strings.TrimSpace(os.Getenv("MSGCAT_DIR"))

	return cfg, nil
}
