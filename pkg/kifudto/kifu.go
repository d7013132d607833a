package kifudto

import "time"

// KifuSummary は一覧・登録応答に使う棋譜レコードの要約。
type KifuSummary struct {
	ID         int64     `json:"id"`
	KifuUUID   string    `json:"kifu_uuid"`
	GameDate   string    `json:"game_date,omitempty"`
	MySide     string    `json:"my_side"`
	Opponent   string    `json:"opponent,omitempty"`
	TotalMoves int       `json:"total_moves"`
	Result     string    `json:"result"`
	MySentype  string    `json:"my_sentype"`
	OppSentype string    `json:"opp_sentype"`
	Analyzed   bool      `json:"analyzed"`
	CreatedAt  time.Time `json:"created_at"`
}

// KifuDetail は1件取得用。原文と解析結果を含む。
type KifuDetail struct {
	KifuSummary
	KifRaw     string     `json:"kif_raw"`
	Evals      []MoveEval `json:"evals"`
	Blunders   []Blunder  `json:"blunders"`
	Commentary string     `json:"commentary,omitempty"`
}

type MoveEval struct {
	MoveNum     int    `json:"move_num"`
	Move        string `json:"move"`
	Score       int    `json:"score"`
	BestMoveUSI string `json:"best_move_usi"`
	BestMoveJa  string `json:"best_move_ja"`
}

type Blunder struct {
	MoveEval
	Drop int `json:"drop"`
}

type UploadResponse struct {
	Kifu    KifuSummary `json:"kifu"`
	Message string      `json:"message"`
}

type ListResponse struct {
	Kifus []KifuSummary `json:"kifus"`
}

type StatsResponse struct {
	Games       int            `json:"games"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"losses"`
	Unknown     int            `json:"unknown"`
	Sentypes    map[string]int `json:"sentypes"`
	OppSentypes map[string]int `json:"opp_sentypes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
