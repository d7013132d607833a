package kifu

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ryooooooya/shogi-ganbaru/internal/domain"
)

// memrepo はDB未設定時に使う開発用のインメモリ実装。
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	byID      map[int64]*domain.Kifu
	byUUID    map[string]*domain.Kifu
	byGameKey map[string]*domain.Kifu // gameDate|opponent -> kifu（相手判明分のみ）
}

func NewMemoryRepository() Repository {
	return &memrepo{
		byID:      make(map[int64]*domain.Kifu),
		byUUID:    make(map[string]*domain.Kifu),
		byGameKey: make(map[string]*domain.Kifu),
	}
}

func gameKey(gameDate, opponent string) string {
	return gameDate + "|" + opponent
}

func (m *memrepo) InsertKifu(ctx context.Context, k *domain.Kifu) (int64, error) {
	if k == nil {
		return 0, ErrDuplicateKifu
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dedup := k.Opponent != ""
	key := gameKey(k.GameDate, k.Opponent)
	if dedup {
		if _, exists := m.byGameKey[key]; exists {
			return 0, ErrDuplicateKifu
		}
	}

	m.nextID++
	cp := *k
	cp.ID = m.nextID

	m.byID[cp.ID] = &cp
	m.byUUID[cp.KifuUUID] = &cp
	if dedup {
		m.byGameKey[key] = &cp
	}
	return cp.ID, nil
}

func (m *memrepo) GetRecentKifu(ctx context.Context, limit int) ([]*domain.Kifu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]*domain.Kifu, 0, len(m.byID))
	for _, k := range m.byID {
		items = append(items, k)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]*domain.Kifu, 0, len(items))
	for _, k := range items {
		cp := *k
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memrepo) GetKifu(ctx context.Context, id int64) (*domain.Kifu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k, ok := m.byID[id]; ok && k != nil {
		cp := *k
		return &cp, nil
	}
	return nil, nil
}

func (m *memrepo) GetKifuByUUID(ctx context.Context, kifuUUID string) (*domain.Kifu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k, ok := m.byUUID[kifuUUID]; ok && k != nil {
		cp := *k
		return &cp, nil
	}
	return nil, nil
}

func (m *memrepo) ListUnanalyzed(ctx context.Context, limit int) ([]*domain.Kifu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []*domain.Kifu
	for _, k := range m.byID {
		if k.AnalyzedAt.IsZero() {
			items = append(items, k)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]*domain.Kifu, 0, len(items))
	for _, k := range items {
		cp := *k
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memrepo) AttachAnalysis(ctx context.Context, id int64, evals []domain.MoveEval, blunders []domain.Blunder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.byID[id]
	if !ok || k == nil {
		return ErrKifuNotFound
	}
	k.Evals = append([]domain.MoveEval(nil), evals...)
	k.Blunders = append([]domain.Blunder(nil), blunders...)
	k.AnalyzedAt = time.Now()
	return nil
}

func (m *memrepo) AttachCommentary(ctx context.Context, id int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.byID[id]
	if !ok || k == nil {
		return ErrKifuNotFound
	}
	k.Commentary = text
	return nil
}
