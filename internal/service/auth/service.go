package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5"
)

type TokenServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	jwtService   jwt.Service
	now          func() time.Time
}

func NewTokenService(employeeRepo employee.EmployeeRepository, jwtService jwt.Service) *TokenServiceImpl {
	return &TokenServiceImpl{
		employeeRepo: employeeRepo,
		jwtService:   jwtService,
		now:          time.Now,
	}
}

// IssueToken implements auth.TokenService for an administrator of the
// employee's company.
func (s *TokenServiceImpl) IssueToken(ctx context.Context, req auth.IssueTokenRequest) (auth.AccessTokenResponse, error) {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return auth.AccessTokenResponse{}, err
	}
	if !identity.IsAdmin {
		return auth.AccessTokenResponse{}, auth.ErrAdminPrivilegeRequired
	}
	return s.IssueFor(ctx, identity.CompanyID, req)
}

// IssueFor mints an access token for an active employee of companyID. It
// does not look at the caller and backs the provisioning CLI.
func (s *TokenServiceImpl) IssueFor(ctx context.Context, companyID string, req auth.IssueTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.AccessTokenResponse{}, employee.ErrEmployeeNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive() {
		return auth.AccessTokenResponse{}, employee.ErrEmployeeInactive
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(emp.ID, emp.CompanyID, req.IsAdmin)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	slog.InfoContext(ctx, "Access token issued", "employee_id", emp.ID, "is_admin", req.IsAdmin)
	return auth.AccessTokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt - s.now().Unix(),
	}, nil
}
