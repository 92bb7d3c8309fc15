package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

type QuoteRepository struct {
	db *sql.DB
}

func NewQuoteRepository(db *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO quotes (id, owner_id, title, job_description, generated_content, image_url, document_url, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, quote.ID, quote.OwnerID, quote.Title, quote.JobDescription, quote.GeneratedContent, quote.ImageURL, quote.DocumentURL, quote.CreatedAt, quote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, title, job_description, generated_content, image_url, document_url, created_at, updated_at
FROM quotes
WHERE id = $1
`, id)
	return scanQuote(row)
}

// GetByOwner loads a quote and enforces ownership. A quote that exists
// but belongs to someone else comes back as ErrForbidden so callers can
// distinguish it from a plain miss.
func (r *QuoteRepository) GetByOwner(ctx context.Context, id, ownerID string) (*domain.Quote, error) {
	quote, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.OwnerID != ownerID {
		return nil, domain.WrapError(domain.ErrForbidden, "get quote", fmt.Errorf("quote %s not owned by caller", id))
	}
	return quote, nil
}

func (r *QuoteRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Quote, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM quotes WHERE owner_id = $1
`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, owner_id, title, job_description, generated_content, image_url, document_url, created_at, updated_at
FROM quotes
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Quote, 0, limit)
	for rows.Next() {
		var q domain.Quote
		if err := rows.Scan(
			&q.ID,
			&q.OwnerID,
			&q.Title,
			&q.JobDescription,
			&q.GeneratedContent,
			&q.ImageURL,
			&q.DocumentURL,
			&q.CreatedAt,
			&q.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan quote: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate quotes: %w", err)
	}
	return out, total, nil
}

// Finalize writes title, content and document reference in one statement.
// The owner predicate makes the write a no-op for foreign quotes, which
// surfaces as ErrQuoteNotFound.
func (r *QuoteRepository) Finalize(ctx context.Context, id, ownerID, title, content, documentURL string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE quotes
SET title = $3, generated_content = $4, document_url = $5, updated_at = $6
WHERE id = $1 AND owner_id = $2
`, id, ownerID, title, content, documentURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("finalize quote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize quote rows: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrQuoteNotFound, "finalize quote", fmt.Errorf("quote %s not found for owner", id))
	}
	return nil
}

func (r *QuoteRepository) CountCreatedSince(ctx context.Context, ownerID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM quotes WHERE owner_id = $1 AND created_at >= $2
`, ownerID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count quotes since: %w", err)
	}
	return count, nil
}

func scanQuote(row *sql.Row) (*domain.Quote, error) {
	var q domain.Quote
	err := row.Scan(
		&q.ID,
		&q.OwnerID,
		&q.Title,
		&q.JobDescription,
		&q.GeneratedContent,
		&q.ImageURL,
		&q.DocumentURL,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrQuoteNotFound, "get quote", err)
	}
	if err != nil {
		return nil, fmt.Errorf("scan quote: %w", err)
	}
	return &q, nil
}
