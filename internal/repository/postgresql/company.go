package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type companyRepositoryImpl struct {
	db *database.DB
	tx *TxManager
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db, tx: NewTxManager(db)}
}

// GetByID implements company.CompanyRepository.
func (r *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, name, tax_id, created_at, updated_at FROM companies WHERE id = $1`

	var c company.Company
	err := q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.TaxID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, fmt.Errorf("company with id %s not found: %w", id, err)
		}
		return company.Company{}, fmt.Errorf("failed to get company with id %s: %w", id, err)
	}

	c.Locations, err = r.locations(ctx, q, id)
	if err != nil {
		return company.Company{}, err
	}
	return c, nil
}

func (r *companyRepositoryImpl) locations(ctx context.Context, q database.Querier, companyID string) ([]company.Location, error) {
	query := `
		SELECT name, full_address, lat, lon, is_main
		FROM company_locations
		WHERE company_id = $1
		ORDER BY position
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company locations: %w", err)
	}
	defer rows.Close()

	var locations []company.Location
	for rows.Next() {
		var l company.Location
		if err := rows.Scan(&l.Name, &l.FullAddress, &l.Coordinates.Lat, &l.Coordinates.Lon, &l.IsMain); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

// Upsert implements company.CompanyRepository. Locations are replaced as a
// whole and keep the given order.
func (r *companyRepositoryImpl) Upsert(ctx context.Context, c company.Company) (company.Company, error) {
	var saved company.Company
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		query := `
			INSERT INTO companies (id, name, tax_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, tax_id = EXCLUDED.tax_id, updated_at = NOW()
			RETURNING id, name, tax_id, created_at, updated_at
		`
		err := q.QueryRow(ctx, query, c.ID, c.Name, c.TaxID).
			Scan(&saved.ID, &saved.Name, &saved.TaxID, &saved.CreatedAt, &saved.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert company: %w", err)
		}

		if _, err := q.Exec(ctx, `DELETE FROM company_locations WHERE company_id = $1`, c.ID); err != nil {
			return fmt.Errorf("failed to clear company locations: %w", err)
		}
		for i, l := range c.Locations {
			_, err := q.Exec(ctx, `
				INSERT INTO company_locations (company_id, position, name, full_address, lat, lon, is_main)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, c.ID, i, l.Name, l.FullAddress, l.Coordinates.Lat, l.Coordinates.Lon, l.IsMain)
			if err != nil {
				return fmt.Errorf("failed to insert location %q: %w", l.Name, err)
			}
		}
		saved.Locations = append([]company.Location(nil), c.Locations...)
		return nil
	})
	if err != nil {
		return company.Company{}, err
	}
	return saved, nil
}
