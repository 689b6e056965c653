package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/kiosk"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const kioskColumns = `id, company_id, name, token_hash, is_active, created_at, updated_at`

type kioskRepositoryImpl struct {
	db *database.DB
}

func NewKioskRepository(db *database.DB) kiosk.KioskRepository {
	return &kioskRepositoryImpl{db: db}
}

func scanKiosk(row pgx.Row) (kiosk.Kiosk, error) {
	var k kiosk.Kiosk
	err := row.Scan(&k.ID, &k.CompanyID, &k.Name, &k.TokenHash, &k.IsActive, &k.CreatedAt, &k.UpdatedAt)
	return k, err
}

// GetByID implements kiosk.KioskRepository.
func (r *kioskRepositoryImpl) GetByID(ctx context.Context, id string) (kiosk.Kiosk, error) {
	q := GetQuerier(ctx, r.db)

	k, err := scanKiosk(q.QueryRow(ctx, `SELECT `+kioskColumns+` FROM kiosks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kiosk.Kiosk{}, fmt.Errorf("kiosk with id %s not found: %w", id, err)
		}
		return kiosk.Kiosk{}, fmt.Errorf("failed to get kiosk with id %s: %w", id, err)
	}
	return k, nil
}

func (r *kioskRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]kiosk.Kiosk, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kiosks []kiosk.Kiosk
	for rows.Next() {
		k, err := scanKiosk(rows)
		if err != nil {
			return nil, err
		}
		kiosks = append(kiosks, k)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return kiosks, nil
}

// ListByCompany implements kiosk.KioskRepository.
func (r *kioskRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]kiosk.Kiosk, error) {
	return r.list(ctx, `SELECT `+kioskColumns+` FROM kiosks WHERE company_id = $1 ORDER BY name`, companyID)
}

// ListActiveByCompany implements kiosk.KioskRepository.
func (r *kioskRepositoryImpl) ListActiveByCompany(ctx context.Context, companyID string) ([]kiosk.Kiosk, error) {
	return r.list(ctx, `SELECT `+kioskColumns+` FROM kiosks WHERE company_id = $1 AND is_active ORDER BY name`, companyID)
}

// Create implements kiosk.KioskRepository.
func (r *kioskRepositoryImpl) Create(ctx context.Context, k kiosk.Kiosk) (kiosk.Kiosk, error) {
	q := GetQuerier(ctx, r.db)

	if k.ID == "" {
		k.ID = uuid.NewString()
	}

	query := `
		INSERT INTO kiosks (id, company_id, name, token_hash, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + kioskColumns

	created, err := scanKiosk(q.QueryRow(ctx, query, k.ID, k.CompanyID, k.Name, k.TokenHash, k.IsActive))
	if err != nil {
		if isUniqueViolation(err) {
			return kiosk.Kiosk{}, kiosk.ErrKioskNameConflict
		}
		return kiosk.Kiosk{}, fmt.Errorf("failed to create kiosk: %w", err)
	}
	return created, nil
}

// Update implements kiosk.KioskRepository.
func (r *kioskRepositoryImpl) Update(ctx context.Context, k kiosk.Kiosk) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE kiosks SET name = $1, is_active = $2, updated_at = NOW()
		WHERE id = $3
	`, k.Name, k.IsActive, k.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return kiosk.ErrKioskNameConflict
		}
		return fmt.Errorf("failed to update kiosk with id %s: %w", k.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("kiosk with id %s not found: %w", k.ID, pgx.ErrNoRows)
	}
	return nil
}

// Delete implements kiosk.KioskRepository.
func (r *kioskRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM kiosks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete kiosk with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("kiosk with id %s not found: %w", id, pgx.ErrNoRows)
	}
	return nil
}
