package kif

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// KIF形式の固定トークン
const (
	headerDate  = "開始日時："
	headerSente = "先手："
	headerGote  = "後手："

	phraseSenteWin = "先手の勝ち"
	phraseGoteWin  = "後手の勝ち"
)

type Side string

const (
	SideSente   Side = "sente"
	SideGote    Side = "gote"
	SideUnknown Side = "unknown"
)

type Result string

const (
	ResultWin     Result = "win"
	ResultLose    Result = "lose"
	ResultUnknown Result = "unknown"
)

// Ply は棋譜中の1手。Number は1始まりで、先手が奇数手を指す。
type Ply struct {
	Number int
	Text   string
}

// Record は棋譜1件から導出した対局サマリ。生成後は変更しない。
type Record struct {
	GameDate   string
	MySide     Side
	Opponent   string
	TotalMoves int
	Result     Result
	MySentype  string
	OppSentype string
	KifRaw     string
}

// ErrNoMoves は指し手行が1行も読み取れなかったことを表す。
// 導出が失敗するのはこの場合のみで、ヘッダ欠落などは不明値に落とす。
var ErrNoMoves = errors.New("kif: no parseable moves")

// 指し手行: "   1 ７六歩(77)   ( 0:03/00:00:03)" のような形。
// 末尾の消費時間括弧は捨てる。
var moveLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s+\(`)

// header は抽出途中のヘッダ値。同じヘッダが複数回現れた場合は後勝ち。
type header struct {
	gameDate  string
	senteName string
	goteName  string
}

func parseHeader(lines []string) header {
	var h header
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, headerDate):
			h.gameDate = strings.TrimSpace(strings.TrimPrefix(line, headerDate))
		case strings.HasPrefix(line, headerSente):
			h.senteName = strings.TrimSpace(strings.TrimPrefix(line, headerSente))
		case strings.HasPrefix(line, headerGote):
			h.goteName = strings.TrimSpace(strings.TrimPrefix(line, headerGote))
		}
	}
	return h
}

// parseMoves は指し手行を行順のまま返す。番号による並べ替えはしない。
func parseMoves(lines []string) []Ply {
	var plies []Ply
	for _, line := range lines {
		m := moveLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		plies = append(plies, Ply{Number: n, Text: m[2]})
	}
	return plies
}

// resolveSide は設定された対局者名と宣言名を完全一致で照合する。
// どちらか一方だけに一致したときのみ手番が決まる。
func resolveSide(h header, trackedName string) (Side, string) {
	if trackedName == "" {
		return SideUnknown, ""
	}
	senteMatch := trackedName == h.senteName
	goteMatch := trackedName == h.goteName
	switch {
	case senteMatch && !goteMatch:
		return SideSente, h.goteName
	case goteMatch && !senteMatch:
		return SideGote, h.senteName
	default:
		return SideUnknown, ""
	}
}

// parseWinner は勝敗句を行順に走査し、最初に見つかった方を返す。
// ヘッダの後勝ちとは逆に、こちらは先勝ち。
func parseWinner(lines []string) Side {
	for _, line := range lines {
		if strings.Contains(line, phraseSenteWin) {
			return SideSente
		}
		if strings.Contains(line, phraseGoteWin) {
			return SideGote
		}
	}
	return SideUnknown
}

// splitByParity は手番の偶奇で自分の手と相手の手に分ける。
// 手番不明のときは後手と同じ偶奇を使う。
func splitByParity(plies []Ply, side Side) (mine, theirs []string) {
	myParity := 0
	if side == SideSente {
		myParity = 1
	}
	for _, p := range plies {
		if p.Number%2 == myParity {
			mine = append(mine, p.Text)
		} else {
			theirs = append(theirs, p.Text)
		}
	}
	return mine, theirs
}

// RecordFrom は生の棋譜テキストから対局サマリを導出する。
// trackedName は集計対象の対局者名。空文字ならどの対局にも一致しない。
// 指し手行が1行もない場合のみ ErrNoMoves を返す。
func RecordFrom(raw, trackedName string) (*Record, error) {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}

	h := parseHeader(lines)
	plies := parseMoves(lines)
	if len(plies) == 0 {
		return nil, ErrNoMoves
	}

	side, opponent := resolveSide(h, trackedName)

	result := ResultUnknown
	if side != SideUnknown {
		switch parseWinner(lines) {
		case side:
			result = ResultWin
		case SideUnknown:
			result = ResultUnknown
		default:
			result = ResultLose
		}
	}

	mine, theirs := splitByParity(plies, side)

	return &Record{
		GameDate:   h.gameDate,
		MySide:     side,
		Opponent:   opponent,
		TotalMoves: plies[len(plies)-1].Number,
		Result:     result,
		MySentype:  classifySentype(mine, rankMarkMine),
		OppSentype: classifySentype(theirs, rankMarkOpp),
		KifRaw:     raw,
	}, nil
}
