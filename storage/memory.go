package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cashup-backend/ledger"
	"cashup-backend/models"
)

var errNegativeBucket = errors.New("storage: summary bucket would go negative")

// Memory is an in-process ledger.Store used by the test suite and as a dev
// fallback. A single mutex spans every transaction, which trivially satisfies
// the serialization contract at the cost of cross-key blocking; the Postgres
// store is the one that locks per summary row.
type Memory struct {
	mu        sync.Mutex
	festivals map[string]models.Festival
	users     map[string]models.User
	bins      []models.TrashBin
	photos    []models.TrashPhoto
	summaries map[ledger.SummaryKey]models.UserDailySummary
	scans     []models.BinScan
	coupons   []models.Coupon
}

func NewMemory() *Memory {
	return &Memory{
		festivals: make(map[string]models.Festival),
		users:     make(map[string]models.User),
		summaries: make(map[ledger.SummaryKey]models.UserDailySummary),
	}
}

func (m *Memory) GetFestival(ctx context.Context, id string) (*models.Festival, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.festivals[id]
	if !ok {
		return nil, ledger.ErrFestivalNotFound
	}
	return &f, nil
}

func (m *Memory) ListFestivals(ctx context.Context) ([]models.Festival, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Festival, 0, len(m.festivals))
	for _, f := range m.festivals {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateFestival(ctx context.Context, f *models.Festival) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.festivals[f.ID] = *f
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ledger.ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) GetBinByCode(ctx context.Context, festivalID, code string) (*models.TrashBin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bins {
		if b.FestivalID == festivalID && b.Code == code {
			bin := b
			return &bin, nil
		}
	}
	return nil, ledger.ErrBinNotFound
}

func (m *Memory) ListBins(ctx context.Context, festivalID string) ([]models.TrashBin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TrashBin
	for _, b := range m.bins {
		if b.FestivalID == festivalID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *Memory) CountBins(ctx context.Context, festivalID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bins {
		if b.FestivalID == festivalID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreateBins(ctx context.Context, bins []models.TrashBin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bins = append(m.bins, bins...)
	return nil
}

func (m *Memory) ListUserPhotos(ctx context.Context, userID, festivalID string) ([]models.TrashPhoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TrashPhoto
	for _, p := range m.photos {
		if p.UserID == userID && p.FestivalID == festivalID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListUserCoupons(ctx context.Context, userID, festivalID string) ([]models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Coupon
	for _, c := range m.coupons {
		if c.UserID == userID && c.FestivalID == festivalID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CountPhotosAfter(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.photos {
		if p.UserID == userID && p.CreatedAt.After(cutoff) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) RecentPhotoHashes(ctx context.Context, userID string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []models.TrashPhoto
	for _, p := range m.photos {
		if p.UserID == userID {
			mine = append(mine, p)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	if len(mine) > limit {
		mine = mine[:limit]
	}
	hashes := make([]string, len(mine))
	for i, p := range mine {
		hashes[i] = p.Hash
	}
	return hashes, nil
}

func (m *Memory) FestivalReport(ctx context.Context, festivalID string) (*models.FestivalReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.festivals[festivalID]
	if !ok {
		return nil, ledger.ErrFestivalNotFound
	}

	participants := make(map[string]struct{})
	pending, active := 0, 0
	for _, p := range m.photos {
		if p.FestivalID != festivalID {
			continue
		}
		participants[p.UserID] = struct{}{}
		switch p.Status {
		case models.PhotoPending:
			pending += p.Points
		case models.PhotoActive:
			active += p.Points
		}
	}

	counts := make(map[string]int)
	for _, s := range m.scans {
		if s.FestivalID == festivalID {
			counts[s.BinID]++
		}
	}
	var usage []models.BinUsage
	for _, b := range m.bins {
		if b.FestivalID == festivalID && counts[b.ID] > 0 {
			usage = append(usage, models.BinUsage{BinID: b.ID, Code: b.Code, Count: counts[b.ID]})
		}
	}

	return &models.FestivalReport{
		Festival:          &f,
		TotalParticipants: len(participants),
		TotalPending:      pending,
		TotalActive:       active,
		BinUsage:          usage,
	}, nil
}

// InLedgerTx stages all writes and applies them only when fn succeeds, so a
// failed workflow leaves no partial state behind.
func (m *Memory) InLedgerTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		store:     m,
		summaries: make(map[ledger.SummaryKey]*models.UserDailySummary),
		activated: make(map[string]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memTx struct {
	store     *Memory
	summaries map[ledger.SummaryKey]*models.UserDailySummary
	photos    []models.TrashPhoto
	activated map[string]bool
	scans     []models.BinScan
	coupons   []models.Coupon
}

func (t *memTx) Summary(key ledger.SummaryKey) (*models.UserDailySummary, error) {
	if s, ok := t.summaries[key]; ok {
		copied := *s
		return &copied, nil
	}
	if s, ok := t.store.summaries[key]; ok {
		staged := s
		t.summaries[key] = &staged
		copied := staged
		return &copied, nil
	}
	staged := models.UserDailySummary{
		ID:         uuid.New().String(),
		UserID:     key.UserID,
		FestivalID: key.FestivalID,
		Date:       key.Date,
		CreatedAt:  time.Now().UTC(),
	}
	t.summaries[key] = &staged
	copied := staged
	return &copied, nil
}

func (t *memTx) AddSummary(key ledger.SummaryKey, pending, active, consumed int) (*models.UserDailySummary, error) {
	s, ok := t.summaries[key]
	if !ok {
		if _, err := t.Summary(key); err != nil {
			return nil, err
		}
		s = t.summaries[key]
	}
	if s.TotalPending+pending < 0 || s.TotalActive+active < 0 || s.TotalConsumed+consumed < 0 {
		return nil, errNegativeBucket
	}
	s.TotalPending += pending
	s.TotalActive += active
	s.TotalConsumed += consumed
	copied := *s
	return &copied, nil
}

func (t *memTx) InsertPhoto(p *models.TrashPhoto) error {
	t.photos = append(t.photos, *p)
	return nil
}

func (t *memTx) PendingPhotosSince(userID, festivalID string, cutoff time.Time) ([]models.TrashPhoto, error) {
	var out []models.TrashPhoto
	for _, p := range t.store.photos {
		if p.UserID == userID && p.FestivalID == festivalID &&
			p.Status == models.PhotoPending && !t.activated[p.ID] && !p.CreatedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) ActivatePhotos(ids []string) error {
	for _, id := range ids {
		t.activated[id] = true
	}
	return nil
}

func (t *memTx) InsertScan(s *models.BinScan) error {
	t.scans = append(t.scans, *s)
	return nil
}

func (t *memTx) InsertCoupon(c *models.Coupon) error {
	t.coupons = append(t.coupons, *c)
	return nil
}

func (t *memTx) commit() {
	for key, s := range t.summaries {
		t.store.summaries[key] = *s
	}
	t.store.photos = append(t.store.photos, t.photos...)
	for i := range t.store.photos {
		if t.activated[t.store.photos[i].ID] {
			t.store.photos[i].Status = models.PhotoActive
		}
	}
	t.store.scans = append(t.store.scans, t.scans...)
	t.store.coupons = append(t.store.coupons, t.coupons...)
}
