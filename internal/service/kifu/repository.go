package kifu

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ryooooooya/shogi-ganbaru/internal/domain"
)

var (
	ErrDuplicateKifu = errors.New("kifu already exists")
	ErrKifuNotFound  = errors.New("kifu not found")
)

type Repository interface {
	InsertKifu(ctx context.Context, k *domain.Kifu) (int64, error)
	GetRecentKifu(ctx context.Context, limit int) ([]*domain.Kifu, error)
	GetKifu(ctx context.Context, id int64) (*domain.Kifu, error)
	GetKifuByUUID(ctx context.Context, kifuUUID string) (*domain.Kifu, error)
	ListUnanalyzed(ctx context.Context, limit int) ([]*domain.Kifu, error)
	AttachAnalysis(ctx context.Context, id int64, evals []domain.MoveEval, blunders []domain.Blunder) error
	AttachCommentary(ctx context.Context, id int64, text string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const kifuColumns = `
		id,
		kifu_uuid,
		game_date,
		my_side,
		opponent,
		total_moves,
		result,
		my_sentype,
		opp_sentype,
		kif_raw,
		evals,
		blunders,
		commentary,
		analyzed_at,
		created_at`

// InsertKifu は (game_date, opponent) を自然キーとして重複を弾く。
// 相手不明のレコードは重複判定の対象外。
func (r *repository) InsertKifu(ctx context.Context, k *domain.Kifu) (int64, error) {
	if k == nil {
		return 0, fmt.Errorf("nil kifu payload")
	}

	evals, err := json.Marshal(emptySliceEvals(k.Evals))
	if err != nil {
		return 0, fmt.Errorf("marshal evals: %w", err)
	}
	blunders, err := json.Marshal(emptySliceBlunders(k.Blunders))
	if err != nil {
		return 0, fmt.Errorf("marshal blunders: %w", err)
	}

	const query = `
		INSERT INTO kifus (
			kifu_uuid,
			game_date,
			my_side,
			opponent,
			total_moves,
			result,
			my_sentype,
			opp_sentype,
			kif_raw,
			evals,
			blunders,
			commentary,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb, $12, $13)
		ON CONFLICT (game_date, opponent) WHERE opponent <> '' DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(
		ctx,
		query,
		k.KifuUUID,
		k.GameDate,
		k.MySide,
		k.Opponent,
		k.TotalMoves,
		k.Result,
		k.MySentype,
		k.OppSentype,
		k.KifRaw,
		evals,
		blunders,
		k.Commentary,
		k.CreatedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return 0, ErrDuplicateKifu
	}
	if err != nil {
		return 0, fmt.Errorf("insert kifu: %w", err)
	}
	return id.Int64, nil
}

func (r *repository) GetRecentKifu(ctx context.Context, limit int) ([]*domain.Kifu, error) {
	if limit <= 0 {
		limit = 30
	}
	query := `SELECT` + kifuColumns + `
		FROM kifus
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select kifus: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Kifu, 0, limit)
	for rows.Next() {
		k, err := scanKifu(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *repository) GetKifu(ctx context.Context, id int64) (*domain.Kifu, error) {
	query := `SELECT` + kifuColumns + ` FROM kifus WHERE id = $1`
	k, err := scanKifu(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return k, err
}

func (r *repository) GetKifuByUUID(ctx context.Context, kifuUUID string) (*domain.Kifu, error) {
	query := `SELECT` + kifuColumns + ` FROM kifus WHERE kifu_uuid = $1 LIMIT 1`
	k, err := scanKifu(r.db.QueryRowContext(ctx, query, kifuUUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return k, err
}

func (r *repository) ListUnanalyzed(ctx context.Context, limit int) ([]*domain.Kifu, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + kifuColumns + `
		FROM kifus
		WHERE analyzed_at IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select unanalyzed kifus: %w", err)
	}
	defer rows.Close()

	var out []*domain.Kifu
	for rows.Next() {
		k, err := scanKifu(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *repository) AttachAnalysis(ctx context.Context, id int64, evals []domain.MoveEval, blunders []domain.Blunder) error {
	evalsJSON, err := json.Marshal(emptySliceEvals(evals))
	if err != nil {
		return fmt.Errorf("marshal evals: %w", err)
	}
	blundersJSON, err := json.Marshal(emptySliceBlunders(blunders))
	if err != nil {
		return fmt.Errorf("marshal blunders: %w", err)
	}

	const query = `
		UPDATE kifus
		SET evals = $2::jsonb, blunders = $3::jsonb, analyzed_at = NOW()
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, evalsJSON, blundersJSON)
	if err != nil {
		return fmt.Errorf("attach analysis: %w", err)
	}
	return requireRow(res)
}

func (r *repository) AttachCommentary(ctx context.Context, id int64, text string) error {
	const query = `UPDATE kifus SET commentary = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, text)
	if err != nil {
		return fmt.Errorf("attach commentary: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKifu(row rowScanner) (*domain.Kifu, error) {
	var (
		k            domain.Kifu
		evalsJSON    []byte
		blundersJSON []byte
		analyzedAt   sql.NullTime
	)
	if err := row.Scan(
		&k.ID,
		&k.KifuUUID,
		&k.GameDate,
		&k.MySide,
		&k.Opponent,
		&k.TotalMoves,
		&k.Result,
		&k.MySentype,
		&k.OppSentype,
		&k.KifRaw,
		&evalsJSON,
		&blundersJSON,
		&k.Commentary,
		&analyzedAt,
		&k.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan kifu: %w", err)
	}
	if analyzedAt.Valid {
		k.AnalyzedAt = analyzedAt.Time
	}
	if err := json.Unmarshal(evalsJSON, &k.Evals); err != nil {
		return nil, fmt.Errorf("unmarshal evals: %w", err)
	}
	if err := json.Unmarshal(blundersJSON, &k.Blunders); err != nil {
		return nil, fmt.Errorf("unmarshal blunders: %w", err)
	}
	return &k, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrKifuNotFound
	}
	return nil
}

// jsonbカラムに null ではなく [] を入れるための補助。
func emptySliceEvals(v []domain.MoveEval) []domain.MoveEval {
	if v == nil {
		return []domain.MoveEval{}
	}
	return v
}

func emptySliceBlunders(v []domain.Blunder) []domain.Blunder {
	if v == nil {
		return []domain.Blunder{}
	}
	return v
}
