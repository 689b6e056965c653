package company

import "context"

type CompanyService interface {
	GetCompany(ctx context.Context) (CompanyResponse, error)
	UpsertCompany(ctx context.Context, req UpsertCompanyRequest) (CompanyResponse, error)
}
