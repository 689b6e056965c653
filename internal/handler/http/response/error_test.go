package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/kiosk"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", validator.ValidationErrors{{Field: "type", Message: "bad"}}, http.StatusUnprocessableEntity},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"kiosk token", timeentry.ErrKioskUnauthorized, http.StatusUnauthorized},
		{"kiosk permission", timeentry.ErrKioskPermissionDenied, http.StatusForbidden},
		{"inactive", employee.ErrEmployeeInactive, http.StatusForbidden},
		{"not admin", auth.ErrAdminPrivilegeRequired, http.StatusForbidden},
		{"no location", timeentry.ErrLocationUnavailable, http.StatusBadRequest},
		{"no matching location", timeentry.ErrNoMatchingLocation, http.StatusBadRequest},
		{"future replay", timeentry.ErrFutureTimestamp, http.StatusBadRequest},
		{"entry not found", timeentry.ErrEntryNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("failed to load: %w", employee.ErrEmployeeNotFound), http.StatusNotFound},
		{"already processed", timeentry.ErrEntryAlreadyProcessed, http.StatusConflict},
		{"idempotency conflict", timeentry.ErrIdempotencyConflict, http.StatusConflict},
		{"certificate not editable", timeentry.ErrCertificateNotEditable, http.StatusConflict},
		{"kiosk name", kiosk.ErrKioskNameConflict, http.StatusConflict},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandleError_InternalDetailsAreHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestHandleError_JustificationRequired(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, timeentry.ErrJustificationRequired)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.RequiresJustification)
	assert.Equal(t, "JUSTIFICATION_REQUIRED", body.Error.Code)
}

func TestHandleError_RateLimited(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, &timeentry.RateLimitError{Wait: 90*time.Second + time.Millisecond})

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "91", rec.Header().Get("Retry-After"))
}
