package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetByOwner returns (nil, nil) for users without a subscription row,
// which downstream code treats as the free tier.
func (r *SubscriptionRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT owner_id, tier, expires_at
FROM subscriptions
WHERE owner_id = $1
`, ownerID)

	var (
		s         domain.Subscription
		expiresAt sql.NullTime
	)
	if err := row.Scan(&s.OwnerID, &s.Tier, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	if expiresAt.Valid {
		s.ExpiresAt = expiresAt.Time
	}
	return &s, nil
}
