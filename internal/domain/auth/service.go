package auth

import "context"

// TokenService issues identity tokens for provisioned employees.
type TokenService interface {
	IssueToken(ctx context.Context, req IssueTokenRequest) (AccessTokenResponse, error)
}
