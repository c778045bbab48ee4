// Package storage provides the ledger.Store implementations: Postgres for
// production and Memory for tests and development.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cashup-backend/ledger"
	"cashup-backend/models"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func Connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// RunMigration executes a single SQL file; the schema is idempotent.
func (s *Postgres) RunMigration(ctx context.Context, path string) error {
	sqlBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

const festivalColumns = "id, name, budget, per_user_daily_cap, per_photo_point, center_lat, center_lng, radius_meters, created_at"

func scanFestival(row pgx.Row) (*models.Festival, error) {
	var f models.Festival
	err := row.Scan(&f.ID, &f.Name, &f.Budget, &f.PerUserDailyCap, &f.PerPhotoPoint,
		&f.CenterLat, &f.CenterLng, &f.RadiusMeters, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Postgres) GetFestival(ctx context.Context, id string) (*models.Festival, error) {
	f, err := scanFestival(s.pool.QueryRow(ctx,
		"SELECT "+festivalColumns+" FROM festivals WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrFestivalNotFound
	}
	return f, err
}

func (s *Postgres) ListFestivals(ctx context.Context) ([]models.Festival, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+festivalColumns+" FROM festivals ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Festival
	for rows.Next() {
		f, err := scanFestival(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateFestival(ctx context.Context, f *models.Festival) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO festivals (id, name, budget, per_user_daily_cap, per_photo_point, center_lat, center_lng, radius_meters, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.ID, f.Name, f.Budget, f.PerUserDailyCap, f.PerPhotoPoint,
		f.CenterLat, f.CenterLng, f.RadiusMeters, f.CreatedAt)
	return err
}

func (s *Postgres) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		"SELECT id, provider, provider_user_id, display_name, created_at FROM users WHERE id = $1", id).
		Scan(&u.ID, &u.Provider, &u.ProviderUserID, &u.DisplayName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, provider, provider_user_id, display_name, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Provider, u.ProviderUserID, u.DisplayName, u.CreatedAt)
	return err
}

const binColumns = "id, festival_id, code, name, description, latitude, longitude, created_at"

func scanBin(row pgx.Row) (*models.TrashBin, error) {
	var b models.TrashBin
	err := row.Scan(&b.ID, &b.FestivalID, &b.Code, &b.Name, &b.Description,
		&b.Latitude, &b.Longitude, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Postgres) GetBinByCode(ctx context.Context, festivalID, code string) (*models.TrashBin, error) {
	b, err := scanBin(s.pool.QueryRow(ctx,
		"SELECT "+binColumns+" FROM trash_bins WHERE festival_id = $1 AND code = $2", festivalID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrBinNotFound
	}
	return b, err
}

func (s *Postgres) ListBins(ctx context.Context, festivalID string) ([]models.TrashBin, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+binColumns+" FROM trash_bins WHERE festival_id = $1 ORDER BY code ASC", festivalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TrashBin
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Postgres) CountBins(ctx context.Context, festivalID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM trash_bins WHERE festival_id = $1", festivalID).Scan(&n)
	return n, err
}

func (s *Postgres) CreateBins(ctx context.Context, bins []models.TrashBin) error {
	for _, b := range bins {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO trash_bins (id, festival_id, code, name, description, latitude, longitude, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			b.ID, b.FestivalID, b.Code, b.Name, b.Description, b.Latitude, b.Longitude, b.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

const photoColumns = "id, user_id, festival_id, image_url, hash, status, points, has_trash, trash_count, max_trash_confidence, analysis, created_at"

func scanPhoto(row pgx.Row) (*models.TrashPhoto, error) {
	var p models.TrashPhoto
	err := row.Scan(&p.ID, &p.UserID, &p.FestivalID, &p.ImageURL, &p.Hash, &p.Status, &p.Points,
		&p.HasTrash, &p.TrashCount, &p.MaxTrashConfidence, &p.Analysis, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Postgres) ListUserPhotos(ctx context.Context, userID, festivalID string) ([]models.TrashPhoto, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+photoColumns+" FROM trash_photos WHERE user_id = $1 AND festival_id = $2 ORDER BY created_at DESC",
		userID, festivalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TrashPhoto
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Postgres) ListUserCoupons(ctx context.Context, userID, festivalID string) ([]models.Coupon, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, festival_id, shop_name, amount, code, status, created_at
		FROM coupons WHERE user_id = $1 AND festival_id = $2 ORDER BY created_at DESC`,
		userID, festivalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Coupon
	for rows.Next() {
		var c models.Coupon
		if err := rows.Scan(&c.ID, &c.UserID, &c.FestivalID, &c.ShopName, &c.Amount, &c.Code, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) CountPhotosAfter(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM trash_photos WHERE user_id = $1 AND created_at > $2", userID, cutoff).Scan(&n)
	return n, err
}

func (s *Postgres) RecentPhotoHashes(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT hash FROM trash_photos WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2", userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Postgres) FestivalReport(ctx context.Context, festivalID string) (*models.FestivalReport, error) {
	festival, err := s.GetFestival(ctx, festivalID)
	if err != nil {
		return nil, err
	}
	report := &models.FestivalReport{Festival: festival}

	err = s.pool.QueryRow(ctx,
		"SELECT COUNT(DISTINCT user_id) FROM trash_photos WHERE festival_id = $1", festivalID).
		Scan(&report.TotalParticipants)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		"SELECT status, COALESCE(SUM(points), 0) FROM trash_photos WHERE festival_id = $1 GROUP BY status", festivalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		switch status {
		case models.PhotoPending:
			report.TotalPending = total
		case models.PhotoActive:
			report.TotalActive = total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	usageRows, err := s.pool.Query(ctx, `
		SELECT b.id, b.code, COUNT(s.id)
		FROM bin_scans s
		JOIN trash_bins b ON b.id = s.bin_id
		WHERE s.festival_id = $1
		GROUP BY b.id, b.code
		ORDER BY b.code ASC`, festivalID)
	if err != nil {
		return nil, err
	}
	defer usageRows.Close()
	for usageRows.Next() {
		var u models.BinUsage
		if err := usageRows.Scan(&u.BinID, &u.Code, &u.Count); err != nil {
			return nil, err
		}
		report.BinUsage = append(report.BinUsage, u)
	}
	return report, usageRows.Err()
}

// InLedgerTx runs fn inside a database transaction. Summary rows are locked
// with SELECT ... FOR UPDATE, so concurrent transactions on the same
// (user, festival, date) serialize while other keys proceed in parallel.
// Serialization failures and deadlocks map to ledger.ErrTxConflict.
func (s *Postgres) InLedgerTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	dbTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	if err := fn(&pgTx{ctx: ctx, tx: dbTx}); err != nil {
		return mapTxErr(err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return mapTxErr(err)
	}
	return nil
}

func mapTxErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return ledger.ErrTxConflict
		}
	}
	return err
}

type pgTx struct {
	ctx context.Context
	tx  pgx.Tx
}

const summaryColumns = "id, user_id, festival_id, date, total_pending, total_active, total_consumed, created_at"

func scanSummary(row pgx.Row) (*models.UserDailySummary, error) {
	var s models.UserDailySummary
	err := row.Scan(&s.ID, &s.UserID, &s.FestivalID, &s.Date,
		&s.TotalPending, &s.TotalActive, &s.TotalConsumed, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *pgTx) Summary(key ledger.SummaryKey) (*models.UserDailySummary, error) {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO user_daily_summaries (id, user_id, festival_id, date, created_at)
		VALUES (gen_random_uuid()::text, $1, $2, $3, now())
		ON CONFLICT (user_id, festival_id, date) DO NOTHING`,
		key.UserID, key.FestivalID, key.Date)
	if err != nil {
		return nil, err
	}
	return scanSummary(t.tx.QueryRow(t.ctx, `
		SELECT `+summaryColumns+` FROM user_daily_summaries
		WHERE user_id = $1 AND festival_id = $2 AND date = $3
		FOR UPDATE`,
		key.UserID, key.FestivalID, key.Date))
}

func (t *pgTx) AddSummary(key ledger.SummaryKey, pending, active, consumed int) (*models.UserDailySummary, error) {
	return scanSummary(t.tx.QueryRow(t.ctx, `
		UPDATE user_daily_summaries
		SET total_pending = total_pending + $1,
		    total_active = total_active + $2,
		    total_consumed = total_consumed + $3
		WHERE user_id = $4 AND festival_id = $5 AND date = $6
		RETURNING `+summaryColumns,
		pending, active, consumed, key.UserID, key.FestivalID, key.Date))
}

func (t *pgTx) InsertPhoto(p *models.TrashPhoto) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO trash_photos (id, user_id, festival_id, image_url, hash, status, points, has_trash, trash_count, max_trash_confidence, analysis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.UserID, p.FestivalID, p.ImageURL, p.Hash, p.Status, p.Points,
		p.HasTrash, p.TrashCount, p.MaxTrashConfidence, p.Analysis, p.CreatedAt)
	return err
}

func (t *pgTx) PendingPhotosSince(userID, festivalID string, cutoff time.Time) ([]models.TrashPhoto, error) {
	rows, err := t.tx.Query(t.ctx,
		"SELECT "+photoColumns+` FROM trash_photos
		WHERE user_id = $1 AND festival_id = $2 AND status = $3 AND created_at >= $4
		ORDER BY created_at ASC`,
		userID, festivalID, models.PhotoPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TrashPhoto
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (t *pgTx) ActivatePhotos(ids []string) error {
	_, err := t.tx.Exec(t.ctx,
		"UPDATE trash_photos SET status = $1 WHERE id = ANY($2)", models.PhotoActive, ids)
	return err
}

func (t *pgTx) InsertScan(s *models.BinScan) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO bin_scans (id, festival_id, bin_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.FestivalID, s.BinID, s.UserID, s.CreatedAt)
	return err
}

func (t *pgTx) InsertCoupon(c *models.Coupon) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO coupons (id, user_id, festival_id, shop_name, amount, code, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.UserID, c.FestivalID, c.ShopName, c.Amount, c.Code, c.Status, c.CreatedAt)
	return err
}
