package employee

import "context"

// EmployeeRepository scopes every lookup to a company.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	ListByCompany(ctx context.Context, companyID string) ([]Employee, error)
	Create(ctx context.Context, employee Employee) (Employee, error)
	Update(ctx context.Context, employee Employee) error
	Delete(ctx context.Context, id string, companyID string) error
}
