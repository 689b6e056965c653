package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5"
)

type CompanyServiceImpl struct {
	companyRepo company.CompanyRepository
}

func NewCompanyService(companyRepo company.CompanyRepository) company.CompanyService {
	return &CompanyServiceImpl{companyRepo: companyRepo}
}

// GetCompany implements company.CompanyService.
func (c *CompanyServiceImpl) GetCompany(ctx context.Context) (company.CompanyResponse, error) {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	comp, err := c.companyRepo.GetByID(ctx, identity.CompanyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.CompanyResponse{}, company.ErrCompanyNotFound
		}
		return company.CompanyResponse{}, fmt.Errorf("failed to get company: %w", err)
	}
	return company.NewCompanyResponse(comp), nil
}

// UpsertCompany implements company.CompanyService. The company id always
// comes from the caller's token.
func (c *CompanyServiceImpl) UpsertCompany(ctx context.Context, req company.UpsertCompanyRequest) (company.CompanyResponse, error) {
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	locations := make([]company.Location, 0, len(req.Locations))
	for _, l := range req.Locations {
		l.Name = strings.TrimSpace(l.Name)
		l.FullAddress = strings.TrimSpace(l.FullAddress)
		locations = append(locations, l)
	}

	saved, err := c.companyRepo.Upsert(ctx, company.Company{
		ID:        identity.CompanyID,
		Name:      strings.TrimSpace(req.Name),
		TaxID:     strings.TrimSpace(req.TaxID),
		Locations: locations,
	})
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to save company: %w", err)
	}

	slog.InfoContext(ctx, "Company profile saved", "company_id", saved.ID, "locations", len(saved.Locations))
	return company.NewCompanyResponse(saved), nil
}
