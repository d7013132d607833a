package kif

import "strings"

// 段の表記は指した側から見た値になるため、自分の手と相手の手で
// 照合に使う段が鏡写しになる（自分の八段目は相手表記では二段目）。
const (
	rankMarkMine = "八"
	rankMarkOpp  = "二"
)

// 戦型タグ
const (
	SentypeMigiShiken = "右四間飛車"
	SentypeNakabisha  = "中飛車"
	SentypeSangen     = "三間飛車"
	SentypeMukaibisha = "向かい飛車"
	SentypeIbisha     = "居飛車・その他"
)

// 判定は上から順に行い、最初に一致した戦型で確定する。
// 例えば４筋と５筋の両方に飛車が回った棋譜は右四間飛車になる。
var sentypeRules = []struct {
	files []string
	tag   string
}{
	{files: []string{"４"}, tag: SentypeMigiShiken},
	{files: []string{"５"}, tag: SentypeNakabisha},
	{files: []string{"３"}, tag: SentypeSangen},
	{files: []string{"２", "８"}, tag: SentypeMukaibisha},
}

// classifySentype は片側の指し手列から飛車の振り先を推定する。
// 何手目に振ったかは見ず、一度でもその筋に飛車が現れたかどうかで判定する。
func classifySentype(moves []string, rankMark string) string {
	for _, rule := range sentypeRules {
		for _, file := range rule.files {
			pat := file + rankMark + "飛"
			for _, mv := range moves {
				if strings.Contains(mv, pat) {
					return rule.tag
				}
			}
		}
	}
	return SentypeIbisha
}
