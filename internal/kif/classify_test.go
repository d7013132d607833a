package kif

import "testing"

func TestClassifySentypeRules(t *testing.T) {
	cases := []struct {
		name  string
		moves []string
		mark  string
		want  string
	}{
		{"右四間", []string{"７六歩(77)", "４八飛(28)"}, rankMarkMine, SentypeMigiShiken},
		{"中飛車", []string{"５六歩(57)", "５八飛(28)"}, rankMarkMine, SentypeNakabisha},
		{"三間", []string{"３八飛(28)"}, rankMarkMine, SentypeSangen},
		{"向かい飛車2筋", []string{"２八飛(78)"}, rankMarkMine, SentypeMukaibisha},
		{"向かい飛車8筋", []string{"８八飛(28)"}, rankMarkMine, SentypeMukaibisha},
		{"居飛車", []string{"７六歩(77)", "２六歩(27)"}, rankMarkMine, SentypeIbisha},
		{"相手側の段表記", []string{"４二飛(82)"}, rankMarkOpp, SentypeMigiShiken},
		{"相手側に自分側の段は効かない", []string{"４八飛(28)"}, rankMarkOpp, SentypeIbisha},
		{"空列は居飛車", nil, rankMarkMine, SentypeIbisha},
	}
	for _, tc := range cases {
		if got := classifySentype(tc.moves, tc.mark); got != tc.want {
			t.Errorf("%s: classifySentype = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifySentypeOrderSensitive(t *testing.T) {
	// ４筋と５筋の両方が現れたら先に評価される右四間飛車で確定する。
	moves := []string{"５八飛(28)", "４八飛(58)"}
	if got := classifySentype(moves, rankMarkMine); got != SentypeMigiShiken {
		t.Fatalf("classifySentype = %q, want %q (rule order)", got, SentypeMigiShiken)
	}
}

func TestClassifySentypeScansWholeList(t *testing.T) {
	moves := []string{"７六歩(77)", "６八玉(59)", "７八玉(68)", "３八飛(28)"}
	if got := classifySentype(moves, rankMarkMine); got != SentypeSangen {
		t.Fatalf("classifySentype = %q, want %q (match beyond first move)", got, SentypeSangen)
	}
}
