package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// QuotaKind names a daily-limited resource.
type QuotaKind string

const (
	QuotaPosts    QuotaKind = "posts"
	QuotaProjects QuotaKind = "projects"
)

// quotaColumns maps each kind to its table and author column.
var quotaColumns = map[QuotaKind][2]string{
	QuotaPosts:    {"posts", "author_id"},
	QuotaProjects: {"projects", "owner_id"},
}

// QuotaRepository counts and guards daily-limited inserts.
type QuotaRepository interface {
	CountCreatedSince(ctx context.Context, kind QuotaKind, authorID string, since time.Time) (int64, error)
	CreateWithinQuota(ctx context.Context, kind QuotaKind, authorID string, since time.Time, limit int, record interface{}) (int64, error)
}

// PostgresQuotaRepository implements QuotaRepository for PostgreSQL
type PostgresQuotaRepository struct {
	db *gorm.DB
}

// NewPostgresQuotaRepository creates a new PostgresQuotaRepository
func NewPostgresQuotaRepository(db *gorm.DB) *PostgresQuotaRepository {
	return &PostgresQuotaRepository{db: db}
}

// CountCreatedSince counts the author's rows created at or after since.
func (r *PostgresQuotaRepository) CountCreatedSince(ctx context.Context, kind QuotaKind, authorID string, since time.Time) (int64, error) {
	return countSince(r.db.WithContext(ctx), kind, authorID, since)
}

// CreateWithinQuota inserts record unless the author already has limit rows
// since the given instant. The count and insert run under a transaction-scoped
// advisory lock on (kind, author) so concurrent creates serialize. It returns
// the count observed before the insert.
func (r *PostgresQuotaRepository) CreateWithinQuota(ctx context.Context, kind QuotaKind, authorID string, since time.Time, limit int, record interface{}) (int64, error) {
	var used int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := createLocked(tx, kind, authorID, since, limit, record)
		used = n
		return err
	})
	return used, err
}

// createLocked is the body of CreateWithinQuota and must run inside a
// transaction.
func createLocked(tx *gorm.DB, kind QuotaKind, authorID string, since time.Time, limit int, record interface{}) (int64, error) {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", string(kind)+":"+authorID).Error; err != nil {
		return 0, err
	}
	n, err := countSince(tx, kind, authorID, since)
	if err != nil {
		return 0, err
	}
	if n >= int64(limit) {
		return n, ErrQuotaExceeded
	}
	return n, translate(tx.Create(record).Error)
}

func countSince(db *gorm.DB, kind QuotaKind, authorID string, since time.Time) (int64, error) {
	cols, ok := quotaColumns[kind]
	if !ok {
		return 0, fmt.Errorf("unknown quota kind %q", kind)
	}
	var n int64
	err := db.Table(cols[0]).
		Where(cols[1]+" = ? AND created_at >= ?", authorID, since).
		Count(&n).Error
	return n, err
}
