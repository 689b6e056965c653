package jwt

import (
	"context"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Identity is the authenticated caller carried by an access token.
type Identity struct {
	EmployeeID string
	CompanyID  string
	IsAdmin    bool
}

type Service interface {
	GenerateAccessToken(employeeID string, companyID string, isAdmin bool) (token string, expiresAt int64, err error)
	GenerateSSEToken(employeeID string, companyID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (Identity, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(employeeID string, companyID string, isAdmin bool) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"employee_id": employeeID,
		"company_id":  companyID,
		"is_admin":    isAdmin,
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for the status stream,
// which browsers open without an Authorization header.
func (j *JWTService) GenerateSSEToken(employeeID string, companyID string) (token string, expiresIn int, err error) {
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"company_id":  companyID,
		"type":        "sse",
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns its identity.
func (j *JWTService) ValidateSSEToken(tokenString string) (Identity, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return Identity{}, err
	}
	if err := jwt.Validate(token, jwt.WithAcceptableSkew(30*time.Second)); err != nil {
		return Identity{}, auth.ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return Identity{}, auth.ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != "sse" {
		return Identity{}, auth.ErrInvalidToken
	}
	return identityFromClaims(claims)
}

// IdentityFromContext reads the caller from the token verified by the
// jwtauth middleware.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, auth.ErrInvalidToken
	}
	return identityFromClaims(claims)
}

func identityFromClaims(claims map[string]interface{}) (Identity, error) {
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return Identity{}, auth.ErrMissingClaims
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return Identity{}, auth.ErrMissingClaims
	}
	isAdmin, _ := claims["is_admin"].(bool)

	return Identity{EmployeeID: employeeID, CompanyID: companyID, IsAdmin: isAdmin}, nil
}
