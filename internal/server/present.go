package server

import (
	"github.com/ryooooooya/shogi-ganbaru/internal/domain"
	svckifu "github.com/ryooooooya/shogi-ganbaru/internal/service/kifu"
	"github.com/ryooooooya/shogi-ganbaru/pkg/kifudto"
)

func toSummary(k *domain.Kifu) kifudto.KifuSummary {
	return kifudto.KifuSummary{
		ID:         k.ID,
		KifuUUID:   k.KifuUUID,
		GameDate:   k.GameDate,
		MySide:     k.MySide,
		Opponent:   k.Opponent,
		TotalMoves: k.TotalMoves,
		Result:     k.Result,
		MySentype:  k.MySentype,
		OppSentype: k.OppSentype,
		Analyzed:   k.Analyzed(),
		CreatedAt:  k.CreatedAt,
	}
}

func toDetail(k *domain.Kifu) kifudto.KifuDetail {
	return kifudto.KifuDetail{
		KifuSummary: toSummary(k),
		KifRaw:      k.KifRaw,
		Evals:       toEvals(k.Evals),
		Blunders:    toBlunders(k.Blunders),
		Commentary:  k.Commentary,
	}
}

func toEvals(evals []domain.MoveEval) []kifudto.MoveEval {
	out := make([]kifudto.MoveEval, 0, len(evals))
	for _, e := range evals {
		out = append(out, kifudto.MoveEval{
			MoveNum:     e.MoveNum,
			Move:        e.Move,
			Score:       e.Score,
			BestMoveUSI: e.BestMoveUSI,
			BestMoveJa:  e.BestMoveJa,
		})
	}
	return out
}

func toBlunders(blunders []domain.Blunder) []kifudto.Blunder {
	out := make([]kifudto.Blunder, 0, len(blunders))
	for _, b := range blunders {
		out = append(out, kifudto.Blunder{
			MoveEval: kifudto.MoveEval{
				MoveNum:     b.MoveNum,
				Move:        b.Move,
				Score:       b.Score,
				BestMoveUSI: b.BestMoveUSI,
				BestMoveJa:  b.BestMoveJa,
			},
			Drop: b.Drop,
		})
	}
	return out
}

func toStats(st *svckifu.Stats) kifudto.StatsResponse {
	return kifudto.StatsResponse{
		Games:       st.Games,
		Wins:        st.Wins,
		Losses:      st.Losses,
		Unknown:     st.Unknown,
		Sentypes:    st.Sentypes,
		OppSentypes: st.OppSentypes,
	}
}
