package timeentry

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fortaleza = time.FixedZone("America/Fortaleza", -3*60*60)

type recordingNotifier struct {
	employees []string
}

func (n *recordingNotifier) NotifyStatus(_ context.Context, employeeID string) {
	n.employees = append(n.employees, employeeID)
}

func adminContext(t *testing.T) context.Context {
	t.Helper()
	tokens := jwt.NewJWTService("test-secret", "1h")
	token, _, err := tokens.GenerateAccessToken("admin-1", "co-1", true)
	require.NoError(t, err)
	decoded, err := jwtauth.VerifyToken(tokens.JWTAuth(), token)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), decoded, nil)
}

func seed(id string, status timeentry.Status, at time.Time) timeentry.TimeEntry {
	return timeentry.TimeEntry{
		ID: id, CompanyID: "co-1", EmployeeID: "emp-1",
		Type: timeentry.TypeClockIn, Timestamp: at, Status: status,
	}
}

func newService(entries ...timeentry.TimeEntry) (*TimeEntryServiceImpl, *memory.TimeEntryRepository, *recordingNotifier) {
	repo := memory.NewTimeEntryRepository(entries...)
	emps := memory.NewEmployeeRepository(employee.Employee{ID: "emp-1", CompanyID: "co-1", DisplayName: "Ana", Status: employee.StatusActive})
	notifier := &recordingNotifier{}
	svc := NewTimeEntryService(repo, emps, notifier, fortaleza)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, fortaleza) }
	return svc, repo, notifier
}

func TestListPending(t *testing.T) {
	monday := time.Date(2024, 3, 4, 10, 30, 0, 0, fortaleza)
	other := seed("e-4", timeentry.StatusPendingApproval, monday)
	other.CompanyID = "co-2"
	svc, _, _ := newService(
		seed("e-1", timeentry.StatusPendingApproval, monday.Add(time.Hour)),
		seed("e-2", timeentry.StatusApproved, monday),
		seed("e-3", timeentry.StatusPendingApproval, monday),
		other,
	)

	pending, err := svc.ListPending(adminContext(t))
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "e-3", pending[0].ID, "oldest first")
	assert.Equal(t, "e-1", pending[1].ID)
}

func TestApproveAndReject(t *testing.T) {
	at := time.Date(2024, 3, 4, 10, 30, 0, 0, fortaleza)
	svc, repo, notifier := newService(
		seed("e-1", timeentry.StatusPendingApproval, at),
		seed("e-2", timeentry.StatusPendingApproval, at),
	)
	ctx := adminContext(t)

	approved, err := svc.Approve(ctx, timeentry.ReviewEntryRequest{ID: "e-1"})
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusApproved, approved.Status)

	_, err = svc.Reject(ctx, timeentry.ReviewEntryRequest{ID: "e-2"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs, "a rejection needs a reason")

	rejected, err := svc.Reject(ctx, timeentry.ReviewEntryRequest{ID: "e-2", Reason: " not at the office "})
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "not at the office", *rejected.RejectionReason)

	stored, err := repo.GetByID(ctx, "e-2", "co-1")
	require.NoError(t, err)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, "admin-1", *stored.ReviewedBy)

	assert.Equal(t, []string{"emp-1", "emp-1"}, notifier.employees)
}

func TestReview_OnlyPendingEntries(t *testing.T) {
	at := time.Date(2024, 3, 4, 8, 0, 0, 0, fortaleza)
	svc, _, _ := newService(
		seed("e-1", timeentry.StatusApproved, at),
		seed("e-2", timeentry.StatusRejected, at),
	)
	ctx := adminContext(t)

	_, err := svc.Approve(ctx, timeentry.ReviewEntryRequest{ID: "e-1"})
	assert.ErrorIs(t, err, timeentry.ErrEntryAlreadyProcessed)

	_, err = svc.Approve(ctx, timeentry.ReviewEntryRequest{ID: "e-2"})
	assert.ErrorIs(t, err, timeentry.ErrEntryAlreadyProcessed)

	_, err = svc.Reject(ctx, timeentry.ReviewEntryRequest{ID: "missing", Reason: "x"})
	assert.ErrorIs(t, err, timeentry.ErrEntryNotFound)
}

// pendingSnapshot serves entries as they were before another administrator
// reviewed them.
type pendingSnapshot struct {
	*memory.TimeEntryRepository
}

func (r pendingSnapshot) GetByID(ctx context.Context, id string, companyID string) (timeentry.TimeEntry, error) {
	e, err := r.TimeEntryRepository.GetByID(ctx, id, companyID)
	e.Status = timeentry.StatusPendingApproval
	return e, err
}

func TestReview_ConcurrentReviewKeepsFirstOutcome(t *testing.T) {
	at := time.Date(2024, 3, 4, 10, 30, 0, 0, fortaleza)
	repo := memory.NewTimeEntryRepository(seed("e-1", timeentry.StatusApproved, at))
	notifier := &recordingNotifier{}
	svc := NewTimeEntryService(pendingSnapshot{repo}, memory.NewEmployeeRepository(), notifier, fortaleza)
	ctx := adminContext(t)

	_, err := svc.Reject(ctx, timeentry.ReviewEntryRequest{ID: "e-1", Reason: "not at the office"})
	assert.ErrorIs(t, err, timeentry.ErrEntryAlreadyProcessed)

	stored, err := repo.GetByID(ctx, "e-1", "co-1")
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusApproved, stored.Status)
	assert.Nil(t, stored.RejectionReason)
	assert.Empty(t, notifier.employees)
}

func TestEdit_MedicalCertificateIsNotEditable(t *testing.T) {
	certificate := seed("e-1", timeentry.StatusApproved, time.Date(2024, 3, 6, 12, 0, 0, 0, fortaleza))
	certificate.Type = timeentry.TypeMedicalCertificate
	svc, repo, _ := newService(certificate)
	ctx := adminContext(t)

	_, err := svc.Edit(ctx, timeentry.EditEntryRequest{ID: "e-1", Timestamp: "2024-03-06T08:00", Type: timeentry.TypeClockIn, Reason: "typo"})
	assert.ErrorIs(t, err, timeentry.ErrCertificateNotEditable)

	stored, err := repo.GetByID(ctx, "e-1", "co-1")
	require.NoError(t, err)
	assert.Equal(t, timeentry.TypeMedicalCertificate, stored.Type)
	assert.False(t, stored.IsEdited)
}

func TestEdit_KeepsFirstOriginalAndStatus(t *testing.T) {
	at := time.Date(2024, 3, 4, 8, 0, 0, 0, fortaleza)
	svc, _, _ := newService(seed("e-1", timeentry.StatusPendingApproval, at))
	ctx := adminContext(t)

	first, err := svc.Edit(ctx, timeentry.EditEntryRequest{ID: "e-1", Timestamp: "2024-03-04T07:55", Type: timeentry.TypeClockIn, Reason: "forgot"})
	require.NoError(t, err)
	assert.True(t, first.IsEdited)
	assert.Equal(t, timeentry.StatusPendingApproval, first.Status)
	assert.True(t, first.Timestamp.Equal(time.Date(2024, 3, 4, 7, 55, 0, 0, fortaleza)))
	require.NotNil(t, first.OriginalTimestamp)
	assert.True(t, first.OriginalTimestamp.Equal(at))

	second, err := svc.Edit(ctx, timeentry.EditEntryRequest{ID: "e-1", Timestamp: "2024-03-04T11:00:00Z", Type: timeentry.TypeBreakStart, Reason: "wrong type"})
	require.NoError(t, err)
	assert.Equal(t, timeentry.TypeBreakStart, second.Type)
	assert.True(t, second.OriginalTimestamp.Equal(at), "the original survives later edits")
	assert.Equal(t, "wrong type", *second.EditReason)
}

func TestEdit_Validation(t *testing.T) {
	svc, _, _ := newService(seed("e-1", timeentry.StatusApproved, time.Now()))
	ctx := adminContext(t)

	var verrs validator.ValidationErrors
	_, err := svc.Edit(ctx, timeentry.EditEntryRequest{ID: "e-1", Timestamp: "yesterday", Type: timeentry.TypeClockIn, Reason: "x"})
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.Edit(ctx, timeentry.EditEntryRequest{ID: "e-1", Timestamp: "2024-03-04T08:00", Type: timeentry.TypeClockIn})
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.Edit(ctx, timeentry.EditEntryRequest{ID: "e-1", Timestamp: "2024-03-04T08:00", Type: timeentry.TypeMedicalCertificate, Reason: "x"})
	assert.ErrorAs(t, err, &verrs)
}

func TestRecordMedicalCertificate(t *testing.T) {
	svc, repo, _ := newService()
	ctx := adminContext(t)

	resp, err := svc.RecordMedicalCertificate(ctx, timeentry.MedicalCertificateRequest{EmployeeID: "emp-1", Date: "2024-03-06", Reason: "flu"})
	require.NoError(t, err)
	assert.True(t, resp.IsMedical)
	assert.Equal(t, timeentry.StatusApproved, resp.Status)
	assert.Equal(t, timeentry.LocationMedicalCertificate, resp.LocationName)
	assert.True(t, resp.Timestamp.Equal(time.Date(2024, 3, 6, 12, 0, 0, 0, fortaleza)))
	assert.Len(t, repo.All(), 1)

	_, err = svc.RecordMedicalCertificate(ctx, timeentry.MedicalCertificateRequest{EmployeeID: "ghost", Date: "2024-03-06", Reason: "flu"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
