package workers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ryooooooya/shogi-ganbaru/internal/domain"
	svckifu "github.com/ryooooooya/shogi-ganbaru/internal/service/kifu"
)

func testKif(date string, moves int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "開始日時：%s\n先手：青木\n後手：鈴木\n", date)
	for i := 1; i <= moves; i++ {
		fmt.Fprintf(&b, "%4d ７六歩(77)   ( 0:01/00:00:10)\n", i)
	}
	b.WriteString("まで3手で後手の勝ち\n")
	return b.String()
}

type countingAnalyzer struct {
	calls   int
	failRaw string
}

func (a *countingAnalyzer) Analyze(ctx context.Context, kifRaw string) ([]domain.MoveEval, []domain.Blunder, error) {
	a.calls++
	if a.failRaw != "" && kifRaw == a.failRaw {
		return nil, nil, errors.New("engine down")
	}
	return []domain.MoveEval{{MoveNum: 1, Move: "７六歩(77)", Score: 10}}, nil, nil
}

func newWorkerFixture(t *testing.T, an svckifu.Analyzer, batch int) (*AnalyzeWorker, *svckifu.Service) {
	t.Helper()
	svc, err := svckifu.NewService(svckifu.NewMemoryRepository(), an, nil, svckifu.Config{TrackedName: "鈴木"}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	w, err := NewAnalyzeWorker(svc, 0, batch, nil)
	if err != nil {
		t.Fatalf("NewAnalyzeWorker: %v", err)
	}
	return w, svc
}

func TestSweepAnalyzesPendingKifu(t *testing.T) {
	an := &countingAnalyzer{}
	w, svc := newWorkerFixture(t, an, 10)

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if _, err := svc.Upload(ctx, testKif(fmt.Sprintf("2024/05/1%d", i), 3)); err != nil {
			t.Fatalf("Upload: %v", err)
		}
	}

	w.sweep()

	if an.calls != 3 {
		t.Fatalf("analyzer calls = %d, want 3", an.calls)
	}
	left, err := svc.Unanalyzed(ctx, 10)
	if err != nil {
		t.Fatalf("Unanalyzed: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("unanalyzed left = %d, want 0", len(left))
	}
}

func TestSweepRespectsBatchLimit(t *testing.T) {
	an := &countingAnalyzer{}
	w, svc := newWorkerFixture(t, an, 2)

	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		if _, err := svc.Upload(ctx, testKif(fmt.Sprintf("2024/05/1%d", i), 3)); err != nil {
			t.Fatalf("Upload: %v", err)
		}
	}

	w.sweep()

	if an.calls != 2 {
		t.Fatalf("analyzer calls = %d, want 2", an.calls)
	}
	left, err := svc.Unanalyzed(ctx, 10)
	if err != nil {
		t.Fatalf("Unanalyzed: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("unanalyzed left = %d, want 2", len(left))
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	bad := testKif("2024/05/11", 3)
	an := &countingAnalyzer{failRaw: bad}
	w, svc := newWorkerFixture(t, an, 10)

	ctx := context.Background()
	if _, err := svc.Upload(ctx, bad); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.Upload(ctx, testKif("2024/05/12", 3)); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	w.sweep()

	if an.calls != 2 {
		t.Fatalf("analyzer calls = %d, want 2", an.calls)
	}
	left, err := svc.Unanalyzed(ctx, 10)
	if err != nil {
		t.Fatalf("Unanalyzed: %v", err)
	}
	if len(left) != 1 {
		t.Fatalf("unanalyzed left = %d, want 1", len(left))
	}
}

func TestSweepEmptyQueueIsNoop(t *testing.T) {
	an := &countingAnalyzer{}
	w, _ := newWorkerFixture(t, an, 10)

	w.sweep()

	if an.calls != 0 {
		t.Fatalf("analyzer calls = %d, want 0", an.calls)
	}
}
