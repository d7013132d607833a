package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	svckifu "github.com/ryooooooya/shogi-ganbaru/internal/service/kifu"
)

// AnalyzeWorker は未解析の棋譜を定期的に拾ってエンジン解析にかける。
type AnalyzeWorker struct {
	svc       *svckifu.Service
	interval  time.Duration
	batch     int
	log       *zap.Logger
	scheduler gocron.Scheduler
}

func NewAnalyzeWorker(svc *svckifu.Service, interval time.Duration, batch int, logger *zap.Logger) (*AnalyzeWorker, error) {
	if svc == nil {
		return nil, fmt.Errorf("nil kifu service")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batch <= 0 {
		batch = 5
	}
	return &AnalyzeWorker{svc: svc, interval: interval, batch: batch, log: logger}, nil
}

func (w *AnalyzeWorker) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if _, err := s.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.sweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("register analyze job: %w", err)
	}
	w.scheduler = s
	s.Start()
	w.log.Info("analyze worker started",
		zap.Duration("interval", w.interval),
		zap.Int("batch", w.batch),
	)
	return nil
}

func (w *AnalyzeWorker) Stop() {
	if w.scheduler == nil {
		return
	}
	if err := w.scheduler.Shutdown(); err != nil {
		w.log.Warn("analyze worker shutdown", zap.Error(err))
	}
	w.scheduler = nil
}

// sweep は1回分の巡回。失敗した棋譜はログだけ残して次へ進む。
func (w *AnalyzeWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	items, err := w.svc.Unanalyzed(ctx, w.batch)
	if err != nil {
		w.log.Error("list unanalyzed kifu", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	done := 0
	for _, k := range items {
		if _, err := w.svc.Analyze(ctx, k.ID); err != nil {
			w.log.Warn("background analyze failed", zap.Int64("id", k.ID), zap.Error(err))
			continue
		}
		done++
	}
	w.log.Info("analyze sweep finished", zap.Int("picked", len(items)), zap.Int("done", done))
}
