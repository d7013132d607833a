package evalcache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ryooooooya/shogi-ganbaru/internal/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(rdb, ttl), mr
}

func TestAnalysisRoundTrip(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	evals := []domain.MoveEval{{MoveNum: 1, Move: "７六歩(77)", Score: 34, BestMoveUSI: "8c8d"}}
	blunders := []domain.Blunder{{MoveEval: domain.MoveEval{MoveNum: 3, Move: "２六歩(27)", Score: -90}, Drop: 124}}

	if err := s.SetAnalysis(ctx, "kif-a", evals, blunders); err != nil {
		t.Fatalf("SetAnalysis: %v", err)
	}
	gotE, gotB, ok, err := s.GetAnalysis(ctx, "kif-a")
	if err != nil || !ok {
		t.Fatalf("GetAnalysis: ok=%v err=%v", ok, err)
	}
	if len(gotE) != 1 || gotE[0].Score != 34 {
		t.Fatalf("evals round trip wrong: %+v", gotE)
	}
	if len(gotB) != 1 || gotB[0].Drop != 124 {
		t.Fatalf("blunders round trip wrong: %+v", gotB)
	}
}

func TestAnalysisMiss(t *testing.T) {
	s, _ := newTestStore(t, 0)
	_, _, ok, err := s.GetAnalysis(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if ok {
		t.Fatalf("expected cache miss")
	}
}

func TestAnalysisKeyedByContent(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()
	if err := s.SetAnalysis(ctx, "kif-a", []domain.MoveEval{{MoveNum: 1}}, nil); err != nil {
		t.Fatalf("SetAnalysis: %v", err)
	}
	_, _, ok, err := s.GetAnalysis(ctx, "kif-b")
	if err != nil || ok {
		t.Fatalf("different kif must miss: ok=%v err=%v", ok, err)
	}
}

func TestAnalysisExpires(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()
	if err := s.SetAnalysis(ctx, "kif-a", []domain.MoveEval{{MoveNum: 1}}, nil); err != nil {
		t.Fatalf("SetAnalysis: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	_, _, ok, err := s.GetAnalysis(ctx, "kif-a")
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if ok {
		t.Fatalf("expected expiry after TTL")
	}
}
