package kifu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryooooooya/shogi-ganbaru/internal/domain"
	"github.com/ryooooooya/shogi-ganbaru/internal/kif"
)

var ErrAnalyzerUnavailable = errors.New("engine analyzer is not configured")

// Analyzer は棋譜テキストをエンジン評価にかける外部協調者。
type Analyzer interface {
	Analyze(ctx context.Context, kifRaw string) ([]domain.MoveEval, []domain.Blunder, error)
}

// AnalysisCache は解析結果のキャッシュ。ヒットしなかったときは ok=false。
type AnalysisCache interface {
	GetAnalysis(ctx context.Context, kifRaw string) (evals []domain.MoveEval, blunders []domain.Blunder, ok bool, err error)
	SetAnalysis(ctx context.Context, kifRaw string, evals []domain.MoveEval, blunders []domain.Blunder) error
}

type Config struct {
	// TrackedName は集計対象の対局者名。空文字なら手番は常に不明になる。
	TrackedName string
	// RecentLimit は一覧と集計の既定件数。
	RecentLimit int
}

// Service は棋譜の取り込み・参照・解析をまとめる。
type Service struct {
	repo     Repository
	analyzer Analyzer      // nil 可
	cache    AnalysisCache // nil 可
	cfg      Config
	log      *zap.Logger
}

func NewService(repo Repository, analyzer Analyzer, cache AnalysisCache, cfg Config, logger *zap.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("nil kifu repository")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 30
	}
	return &Service{repo: repo, analyzer: analyzer, cache: cache, cfg: cfg, log: logger}, nil
}

// Upload は棋譜テキスト1件を導出して保存する。
// 指し手なしは kif.ErrNoMoves、自然キー重複は ErrDuplicateKifu。
func (s *Service) Upload(ctx context.Context, raw string) (*domain.Kifu, error) {
	rec, err := kif.RecordFrom(raw, s.cfg.TrackedName)
	if err != nil {
		return nil, err
	}

	k := &domain.Kifu{
		KifuUUID:   uuid.NewString(),
		GameDate:   rec.GameDate,
		MySide:     string(rec.MySide),
		Opponent:   rec.Opponent,
		TotalMoves: rec.TotalMoves,
		Result:     string(rec.Result),
		MySentype:  rec.MySentype,
		OppSentype: rec.OppSentype,
		KifRaw:     rec.KifRaw,
		CreatedAt:  time.Now(),
	}

	id, err := s.repo.InsertKifu(ctx, k)
	if err != nil {
		return nil, err
	}
	k.ID = id

	s.log.Info("kifu uploaded",
		zap.Int64("id", id),
		zap.String("opponent", k.Opponent),
		zap.String("side", k.MySide),
		zap.Int("moves", k.TotalMoves),
		zap.String("result", k.Result),
		zap.String("sentype", k.MySentype),
	)
	return k, nil
}

// UploadBatch は複数の棋譜を順に取り込む。1件の失敗で残りを止めない。
// 戻り値は入力と同じ長さで、成功分は kifus、失敗分は errs に入る。
func (s *Service) UploadBatch(ctx context.Context, raws []string) (kifus []*domain.Kifu, errs []error) {
	kifus = make([]*domain.Kifu, len(raws))
	errs = make([]error, len(raws))
	for i, raw := range raws {
		k, err := s.Upload(ctx, raw)
		if err != nil {
			errs[i] = err
			s.log.Warn("kifu skipped", zap.Int("index", i), zap.Error(err))
			continue
		}
		kifus[i] = k
	}
	return kifus, errs
}

func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Kifu, error) {
	if limit <= 0 {
		limit = s.cfg.RecentLimit
	}
	return s.repo.GetRecentKifu(ctx, limit)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Kifu, error) {
	k, err := s.repo.GetKifu(ctx, id)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, ErrKifuNotFound
	}
	return k, nil
}

func (s *Service) GetByUUID(ctx context.Context, kifuUUID string) (*domain.Kifu, error) {
	k, err := s.repo.GetKifuByUUID(ctx, kifuUUID)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, ErrKifuNotFound
	}
	return k, nil
}

// SetCommentary は棋譜に感想戦メモを付ける。空文字で消去。
func (s *Service) SetCommentary(ctx context.Context, id int64, text string) (*domain.Kifu, error) {
	k, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AttachCommentary(ctx, id, text); err != nil {
		return nil, err
	}
	k.Commentary = text
	return k, nil
}

func (s *Service) Unanalyzed(ctx context.Context, limit int) ([]*domain.Kifu, error) {
	return s.repo.ListUnanalyzed(ctx, limit)
}

// Analyze は保存済み棋譜をエンジン評価にかけ、結果を保存して返す。
// 同じ棋譜本文の解析結果はキャッシュから再利用する。
func (s *Service) Analyze(ctx context.Context, id int64) (*domain.Kifu, error) {
	k, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	evals, blunders, cached := s.cachedAnalysis(ctx, k.KifRaw)
	if !cached {
		if s.analyzer == nil {
			return nil, ErrAnalyzerUnavailable
		}
		start := time.Now()
		evals, blunders, err = s.analyzer.Analyze(ctx, k.KifRaw)
		if err != nil {
			return nil, fmt.Errorf("engine analyze: %w", err)
		}
		s.log.Info("kifu analyzed",
			zap.Int64("id", id),
			zap.Int("evals", len(evals)),
			zap.Int("blunders", len(blunders)),
			zap.Duration("took", time.Since(start)),
		)
		if s.cache != nil {
			if cerr := s.cache.SetAnalysis(ctx, k.KifRaw, evals, blunders); cerr != nil {
				s.log.Warn("analysis cache set failed", zap.Error(cerr))
			}
		}
	}

	if err := s.repo.AttachAnalysis(ctx, id, evals, blunders); err != nil {
		return nil, err
	}
	k.Evals = evals
	k.Blunders = blunders
	k.AnalyzedAt = time.Now()
	return k, nil
}

func (s *Service) cachedAnalysis(ctx context.Context, kifRaw string) ([]domain.MoveEval, []domain.Blunder, bool) {
	if s.cache == nil {
		return nil, nil, false
	}
	evals, blunders, ok, err := s.cache.GetAnalysis(ctx, kifRaw)
	if err != nil {
		s.log.Warn("analysis cache get failed", zap.Error(err))
		return nil, nil, false
	}
	return evals, blunders, ok
}

// Stats は直近の対局の勝敗と戦型の集計。
type Stats struct {
	Games       int
	Wins        int
	Losses      int
	Unknown     int
	Sentypes    map[string]int
	OppSentypes map[string]int
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	items, err := s.repo.GetRecentKifu(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, err
	}
	st := &Stats{
		Sentypes:    make(map[string]int),
		OppSentypes: make(map[string]int),
	}
	for _, k := range items {
		st.Games++
		switch kif.Result(k.Result) {
		case kif.ResultWin:
			st.Wins++
		case kif.ResultLose:
			st.Losses++
		default:
			st.Unknown++
		}
		st.Sentypes[k.MySentype]++
		st.OppSentypes[k.OppSentype]++
	}
	return st, nil
}
