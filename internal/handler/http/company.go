package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/handler/http/response"
)

type CompanyHandler interface {
	GetCompany(w http.ResponseWriter, r *http.Request)
	UpsertCompany(w http.ResponseWriter, r *http.Request)
}

type companyHandlerImpl struct {
	companyService company.CompanyService
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &companyHandlerImpl{
		companyService: companyService,
	}
}

// GetCompany handles GET /api/admin/company
func (h *companyHandlerImpl) GetCompany(w http.ResponseWriter, r *http.Request) {
	result, err := h.companyService.GetCompany(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpsertCompany handles PUT /api/admin/company
func (h *companyHandlerImpl) UpsertCompany(w http.ResponseWriter, r *http.Request) {
	var req company.UpsertCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.companyService.UpsertCompany(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Company saved successfully", result)
}
