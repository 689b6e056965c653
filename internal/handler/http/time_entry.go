package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TimeEntryHandler interface {
	ListPending(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	RecordMedicalCertificate(w http.ResponseWriter, r *http.Request)
}

type timeEntryHandlerImpl struct {
	timeEntryService timeentry.TimeEntryService
}

func NewTimeEntryHandler(timeEntryService timeentry.TimeEntryService) TimeEntryHandler {
	return &timeEntryHandlerImpl{
		timeEntryService: timeEntryService,
	}
}

// ListPending handles GET /api/admin/entries/pending
func (h *timeEntryHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	result, err := h.timeEntryService.ListPending(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Approve handles POST /api/admin/entries/{id}/approve. The body is optional.
func (h *timeEntryHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReview(w, r)
	if !ok {
		return
	}

	result, err := h.timeEntryService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time entry approved", result)
}

// Reject handles POST /api/admin/entries/{id}/reject
func (h *timeEntryHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReview(w, r)
	if !ok {
		return
	}

	result, err := h.timeEntryService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time entry rejected", result)
}

func decodeReview(w http.ResponseWriter, r *http.Request) (timeentry.ReviewEntryRequest, bool) {
	var req timeentry.ReviewEntryRequest
	req.ID = chi.URLParam(r, "id")
	if req.ID == "" {
		response.BadRequest(w, "Time entry ID is required", nil)
		return req, false
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return req, false
	}
	return req, true
}

// Edit handles PUT /api/admin/entries/{id}
func (h *timeEntryHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Time entry ID is required", nil)
		return
	}

	var req timeentry.EditEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id

	result, err := h.timeEntryService.Edit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time entry updated", result)
}

// RecordMedicalCertificate handles POST /api/admin/medical-certificates
func (h *timeEntryHandlerImpl) RecordMedicalCertificate(w http.ResponseWriter, r *http.Request) {
	var req timeentry.MedicalCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeEntryService.RecordMedicalCertificate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Medical certificate recorded", result)
}
