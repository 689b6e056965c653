package auth

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "test-secret-key-for-jwt"
	testAccessExp = "1h"
)

func callerContext(t *testing.T, tokens jwt.Service, isAdmin bool) context.Context {
	t.Helper()
	token, _, err := tokens.GenerateAccessToken("admin-1", "co-1", isAdmin)
	require.NoError(t, err)
	decoded, err := jwtauth.VerifyToken(tokens.JWTAuth(), token)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), decoded, nil)
}

func newTokenService(tokens jwt.Service) *TokenServiceImpl {
	return NewTokenService(memory.NewEmployeeRepository(
		employee.Employee{ID: "emp-1", CompanyID: "co-1", Status: employee.StatusActive},
		employee.Employee{ID: "emp-2", CompanyID: "co-1", Status: employee.StatusInactive},
		employee.Employee{ID: "emp-3", CompanyID: "co-2", Status: employee.StatusActive},
	), tokens)
}

func TestIssueToken(t *testing.T) {
	tokens := jwt.NewJWTService(testSecret, testAccessExp)
	svc := newTokenService(tokens)

	resp, err := svc.IssueToken(callerContext(t, tokens, true), auth.IssueTokenRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.InDelta(t, 3600, resp.AccessTokenExpiresIn, 2)

	decoded, err := jwtauth.VerifyToken(tokens.JWTAuth(), resp.AccessToken)
	require.NoError(t, err)
	identity, err := jwt.IdentityFromContext(jwtauth.NewContext(context.Background(), decoded, nil))
	require.NoError(t, err)
	assert.Equal(t, jwt.Identity{EmployeeID: "emp-1", CompanyID: "co-1"}, identity)
}

func TestIssueToken_Guards(t *testing.T) {
	tokens := jwt.NewJWTService(testSecret, testAccessExp)
	svc := newTokenService(tokens)
	admin := callerContext(t, tokens, true)

	_, err := svc.IssueToken(callerContext(t, tokens, false), auth.IssueTokenRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, auth.ErrAdminPrivilegeRequired)

	_, err = svc.IssueToken(admin, auth.IssueTokenRequest{EmployeeID: "emp-2"})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	_, err = svc.IssueToken(admin, auth.IssueTokenRequest{EmployeeID: "emp-3"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestIssueFor_AdminClaim(t *testing.T) {
	tokens := jwt.NewJWTService(testSecret, testAccessExp)
	svc := newTokenService(tokens)

	resp, err := svc.IssueFor(context.Background(), "co-2", auth.IssueTokenRequest{EmployeeID: "emp-3", IsAdmin: true})
	require.NoError(t, err)

	decoded, err := jwtauth.VerifyToken(tokens.JWTAuth(), resp.AccessToken)
	require.NoError(t, err)
	isAdmin, ok := decoded.Get("is_admin")
	require.True(t, ok)
	assert.Equal(t, true, isAdmin)
}
