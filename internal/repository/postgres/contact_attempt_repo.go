package postgres

import (
	"context"
	"fmt"

	"portfolio-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const contactAttemptsSchema = `
	CREATE TABLE IF NOT EXISTS contact_attempts (
		id UUID PRIMARY KEY,
		session_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		violated_fields TEXT[] NOT NULL DEFAULT '{}',
		error_kind TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_contact_attempts_created_at ON contact_attempts (created_at DESC);`

// maxAttemptsPage caps ListRecent
const maxAttemptsPage = 200

type contactAttemptRepo struct {
	db *pgxpool.Pool
}

// ContactAttemptRepository is the postgres audit log of contact submits
type ContactAttemptRepository interface {
	domain.ContactAttemptRepository
	EnsureSchema(ctx context.Context) error
}

func NewContactAttemptRepository(db *pgxpool.Pool) ContactAttemptRepository {
	return &contactAttemptRepo{db: db}
}

// EnsureSchema creates the table on first start
func (r *contactAttemptRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, contactAttemptsSchema); err != nil {
		return fmt.Errorf("failed to create contact_attempts table: %w", err)
	}
	return nil
}

func (r *contactAttemptRepo) Record(ctx context.Context, attempt *domain.ContactAttempt) error {
	fields := attempt.ViolatedFields
	if fields == nil {
		fields = []string{}
	}

	query := `INSERT INTO contact_attempts (id, session_hash, outcome, violated_fields, error_kind, created_at)
              VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		attempt.ID, attempt.SessionHash, attempt.Outcome,
		pq.Array(fields), attempt.ErrorKind, attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record contact attempt: %w", err)
	}
	return nil
}

func (r *contactAttemptRepo) ListRecent(ctx context.Context, limit int) ([]domain.ContactAttempt, error) {
	if limit <= 0 || limit > maxAttemptsPage {
		limit = maxAttemptsPage
	}

	query := `SELECT id, session_hash, outcome, violated_fields, error_kind, created_at
              FROM contact_attempts ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []domain.ContactAttempt{}
	for rows.Next() {
		var a domain.ContactAttempt
		var fields []string
		if err := rows.Scan(&a.ID, &a.SessionHash, &a.Outcome, pq.Array(&fields), &a.ErrorKind, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ViolatedFields = fields
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
