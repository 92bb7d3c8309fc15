package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

type CompanyProfileRepository struct {
	db *sql.DB
}

func NewCompanyProfileRepository(db *sql.DB) *CompanyProfileRepository {
	return &CompanyProfileRepository{db: db}
}

// GetByOwner returns (nil, nil) when no profile exists; letterhead data
// is optional everywhere it is used.
func (r *CompanyProfileRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.CompanyProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT owner_id, name, address, phone, email, website, logo_url, terms_and_conditions
FROM company_profiles
WHERE owner_id = $1
`, ownerID)

	var p domain.CompanyProfile
	err := row.Scan(
		&p.OwnerID,
		&p.Name,
		&p.Address,
		&p.Phone,
		&p.Email,
		&p.Website,
		&p.LogoURL,
		&p.TermsAndConditions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan company profile: %w", err)
	}
	return &p, nil
}

// Upsert stores letterhead data; used by profile provisioning.
func (r *CompanyProfileRepository) Upsert(ctx context.Context, p *domain.CompanyProfile) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO company_profiles (owner_id, name, address, phone, email, website, logo_url, terms_and_conditions)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (owner_id) DO UPDATE SET
	name = EXCLUDED.name,
	address = EXCLUDED.address,
	phone = EXCLUDED.phone,
	email = EXCLUDED.email,
	website = EXCLUDED.website,
	logo_url = EXCLUDED.logo_url,
	terms_and_conditions = EXCLUDED.terms_and_conditions
`, p.OwnerID, p.Name, p.Address, p.Phone, p.Email, p.Website, p.LogoURL, p.TermsAndConditions)
	if err != nil {
		return fmt.Errorf("upsert company profile: %w", err)
	}
	return nil
}
