package evalcache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ryooooooya/shogi-ganbaru/internal/domain"
)

const defaultTTL = 24 * time.Hour

// Store は解析結果のRedisキャッシュ。棋譜本文のハッシュをキーにするので、
// 同じ棋譜を登録し直しても再解析は走らない。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func key(kifRaw string) string {
	sum := sha1.Sum([]byte(kifRaw))
	return "kifu:eval:" + hex.EncodeToString(sum[:])
}

type payload struct {
	Evals    []domain.MoveEval `json:"evals"`
	Blunders []domain.Blunder  `json:"blunders"`
}

func (s *Store) GetAnalysis(ctx context.Context, kifRaw string) ([]domain.MoveEval, []domain.Blunder, bool, error) {
	raw, err := s.rdb.Get(ctx, key(kifRaw)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, nil, false, err
	}
	return p.Evals, p.Blunders, true, nil
}

func (s *Store) SetAnalysis(ctx context.Context, kifRaw string, evals []domain.MoveEval, blunders []domain.Blunder) error {
	raw, err := json.Marshal(payload{Evals: evals, Blunders: blunders})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(kifRaw), raw, s.ttl).Err()
}
