package company

import "context"

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)

	// Upsert writes the profile and replaces its locations in declared order.
	Upsert(ctx context.Context, company Company) (Company, error)
}
