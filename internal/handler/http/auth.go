package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AuthHandler interface {
	IssueToken(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	tokenService auth.TokenService
}

func NewAuthHandler(tokenService auth.TokenService) AuthHandler {
	return &AuthHandlerImpl{
		tokenService: tokenService,
	}
}

// IssueToken handles POST /api/admin/employees/{id}/token
func (a *AuthHandlerImpl) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req auth.IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("IssueToken decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := a.tokenService.IssueToken(r.Context(), req)
	if err != nil {
		slog.Error("IssueToken service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Token issued successfully", result)
}
