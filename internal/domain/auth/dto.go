package auth

import "github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"

// IssueTokenRequest mints an access token for an employee of the caller's
// company.
type IssueTokenRequest struct {
	EmployeeID string `json:"employee_id"`
	IsAdmin    bool   `json:"is_admin"`
}

func (r *IssueTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AccessTokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
}
