package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

type PunchHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	MyStatus(w http.ResponseWriter, r *http.Request)
	MyEntries(w http.ResponseWriter, r *http.Request)
	MySummary(w http.ResponseWriter, r *http.Request)

	// SSE
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

// StatusReader loads the derived work status of any employee; the stream
// has no bearer context to resolve the caller from.
type StatusReader interface {
	StatusOf(ctx context.Context, employeeID string) (timeentry.StatusResponse, error)
}

type punchHandlerImpl struct {
	punchService  timeentry.PunchService
	reportService report.ReportService
	statusReader  StatusReader
	jwtService    jwt.Service
	hub           *sse.Hub
}

func NewPunchHandler(
	punchService timeentry.PunchService,
	reportService report.ReportService,
	statusReader StatusReader,
	jwtService jwt.Service,
	hub *sse.Hub,
) PunchHandler {
	return &punchHandlerImpl{
		punchService:  punchService,
		reportService: reportService,
		statusReader:  statusReader,
		jwtService:    jwtService,
		hub:           hub,
	}
}

// Submit handles POST /api/clock-in
func (h *punchHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req timeentry.PunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	req.ClientIP = clientIP(r)

	result, err := h.punchService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, result.Message, result)
}

// MyStatus handles GET /api/me/status
func (h *punchHandlerImpl) MyStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.punchService.MyStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MyEntries handles GET /api/me/entries
func (h *punchHandlerImpl) MyEntries(w http.ResponseWriter, r *http.Request) {
	filter := timeentry.ListEntriesFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.punchService.MyEntries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MySummary handles GET /api/me/summary
func (h *punchHandlerImpl) MySummary(w http.ResponseWriter, r *http.Request) {
	filter := timeentry.ListEntriesFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.reportService.MySummary(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

type streamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GetStreamToken generates a short-lived token for the status stream
func (h *punchHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	identity, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(identity.EmployeeID, identity.CompanyID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, streamTokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream handles the SSE connection pushing work status changes
func (h *punchHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token travels in the query.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	identity, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(identity.EmployeeID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"employee_id\":%q}\n\n", identity.EmployeeID)
	if status, err := h.statusReader.StatusOf(r.Context(), identity.EmployeeID); err == nil {
		writeEvent(w, sse.Event{Event: "status", Data: status})
	} else {
		slog.WarnContext(r.Context(), "Failed to load initial status", "employee_id", identity.EmployeeID, "error", err)
	}
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, event)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event sse.Event) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
}

// clientIP returns the caller address without port. chi's RealIP middleware
// has already applied X-Forwarded-For / X-Real-IP to RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
