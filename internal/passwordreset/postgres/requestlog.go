package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// RequestLogRepository reads and appends the reset audit log with plain SQL.
type RequestLogRepository struct {
	db *sqlx.DB
}

func NewRequestLogRepository(db *sqlx.DB) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

func (r *RequestLogRepository) CountSince(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM password_reset_requests WHERE email = ? AND requested_at >= ?`)
	if err := r.db.GetContext(ctx, &count, query, email, since.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count reset requests: %w", err)
	}
	return count, nil
}

func (r *RequestLogRepository) Append(ctx context.Context, email string, requestedAt time.Time, ip string) error {
	query := r.db.Rebind(`INSERT INTO password_reset_requests (email, requested_at, ip_address) VALUES (?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, email, requestedAt.UTC(), ip); err != nil {
		return fmt.Errorf("failed to log reset request: %w", err)
	}
	return nil
}
