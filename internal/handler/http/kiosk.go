package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/kiosk"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type KioskHandler interface {
	ListKiosks(w http.ResponseWriter, r *http.Request)
	CreateKiosk(w http.ResponseWriter, r *http.Request)
	UpdateKiosk(w http.ResponseWriter, r *http.Request)
	DeleteKiosk(w http.ResponseWriter, r *http.Request)
}

type kioskHandlerImpl struct {
	kioskService kiosk.KioskService
}

func NewKioskHandler(kioskService kiosk.KioskService) KioskHandler {
	return &kioskHandlerImpl{
		kioskService: kioskService,
	}
}

func (h *kioskHandlerImpl) ListKiosks(w http.ResponseWriter, r *http.Request) {
	result, err := h.kioskService.ListKiosks(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateKiosk returns the plain token once; only its hash is kept.
func (h *kioskHandlerImpl) CreateKiosk(w http.ResponseWriter, r *http.Request) {
	var req kiosk.CreateKioskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.kioskService.CreateKiosk(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Kiosk created. Store the token now, it will not be shown again.", result)
}

func (h *kioskHandlerImpl) UpdateKiosk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Kiosk ID is required", nil)
		return
	}

	var req kiosk.UpdateKioskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.kioskService.UpdateKiosk(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Kiosk updated successfully", result)
}

func (h *kioskHandlerImpl) DeleteKiosk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Kiosk ID is required", nil)
		return
	}

	if err := h.kioskService.DeleteKiosk(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Kiosk deleted successfully", nil)
}
