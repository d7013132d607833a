package domain

import "time"

// Kifu は保存対象の棋譜レコード。コアの導出結果にID・解析結果を加えたもの。
type Kifu struct {
	ID         int64
	KifuUUID   string
	GameDate   string
	MySide     string
	Opponent   string
	TotalMoves int
	Result     string
	MySentype  string
	OppSentype string
	KifRaw     string

	Evals      []MoveEval
	Blunders   []Blunder
	Commentary string
	AnalyzedAt time.Time
	CreatedAt  time.Time
}

// Analyzed は解析済みかどうか。
func (k *Kifu) Analyzed() bool {
	return k != nil && !k.AnalyzedAt.IsZero()
}

// MoveEval はエンジン評価1件。評価値は先手視点のセンチポーン。
// フィールドは解析APIのレスポンス形をそのまま保持する。
type MoveEval struct {
	MoveNum     int    `json:"move_num"`
	Move        string `json:"move"`
	Score       int    `json:"score"`
	BestMoveUSI string `json:"best_move_usi"`
	BestMoveJa  string `json:"best_move_ja"`
}

// Blunder は評価値を大きく落とした手。Drop は落差（指した側から見た値）。
type Blunder struct {
	MoveEval
	Drop int `json:"drop"`
}
