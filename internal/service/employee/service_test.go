package employee

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

func adminContext(t *testing.T) context.Context {
	t.Helper()
	tokens := jwt.NewJWTService("test-secret", "1h")
	token, _, err := tokens.GenerateAccessToken("admin-1", "co-1", true)
	require.NoError(t, err)
	decoded, err := jwtauth.VerifyToken(tokens.JWTAuth(), token)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), decoded, nil)
}

func newService() (employee.EmployeeService, *memory.EmployeeRepository, *memory.TimeEntryRepository) {
	emps := memory.NewEmployeeRepository(
		employee.Employee{ID: "admin-1", CompanyID: "co-1", DisplayName: "Admin", Email: "admin@acme.com", Status: employee.StatusActive},
		employee.Employee{ID: "emp-9", CompanyID: "co-2", DisplayName: "Other", Email: "other@else.com", Status: employee.StatusActive},
	)
	entries := memory.NewTimeEntryRepository()
	return NewEmployeeService(memory.Transactor{}, emps, entries), emps, entries
}

func TestCreateEmployee_Defaults(t *testing.T) {
	svc, _, _ := newService()
	ctx := adminContext(t)

	created, err := svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{
		DisplayName:      " Ana ",
		Email:            "Ana@Acme.com",
		AllowedLocations: []string{"Sede", " Sede", "", employee.TagKiosk},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", created.DisplayName)
	assert.Equal(t, "ana@acme.com", created.Email)
	assert.Equal(t, "co-1", created.CompanyID)
	assert.Equal(t, employee.StatusActive, created.Status)
	assert.Equal(t, []string{"Sede", employee.TagKiosk}, created.AllowedLocations)
	require.NotNil(t, created.WorkHours)
	assert.Equal(t, 9*time.Hour, created.WorkHours.ExpectedOn(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

	_, err = svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{DisplayName: "Dup", Email: "ana@acme.com"})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	_, err = svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{DisplayName: "", Email: "nope"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestUpdateEmployee(t *testing.T) {
	svc, _, _ := newService()
	ctx := adminContext(t)

	created, err := svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{DisplayName: "Ana", Email: "ana@acme.com"})
	require.NoError(t, err)

	inactive := employee.StatusInactive
	updated, err := svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{
		ID:               created.ID,
		Status:           &inactive,
		AllowedLocations: []string{employee.TagExternal},
	})
	require.NoError(t, err)
	assert.Equal(t, employee.StatusInactive, updated.Status)
	assert.Equal(t, "Ana", updated.DisplayName)
	assert.Equal(t, []string{employee.TagExternal}, updated.AllowedLocations)

	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: "emp-9", Status: &inactive})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound, "other companies are invisible")
}

func TestListAndGetEmployees(t *testing.T) {
	svc, _, _ := newService()
	ctx := adminContext(t)

	list, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "admin-1", list[0].ID)

	_, err = svc.GetEmployee(ctx, "emp-9")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDeleteEmployee_RemovesEntries(t *testing.T) {
	svc, emps, entries := newService()
	ctx := adminContext(t)

	created, err := svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{DisplayName: "Ana", Email: "ana@acme.com"})
	require.NoError(t, err)
	_, err = entries.Create(ctx, timeentry.TimeEntry{CompanyID: "co-1", EmployeeID: created.ID, Type: timeentry.TypeClockIn, Timestamp: time.Now()})
	require.NoError(t, err)
	_, err = entries.Create(ctx, timeentry.TimeEntry{CompanyID: "co-1", EmployeeID: "admin-1", Type: timeentry.TypeClockIn, Timestamp: time.Now()})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmployee(ctx, created.ID))

	_, err = emps.GetByID(ctx, created.ID, "co-1")
	assert.Error(t, err)
	remaining := entries.All()
	require.Len(t, remaining, 1)
	assert.Equal(t, "admin-1", remaining[0].EmployeeID)
}

func TestDeleteEmployee_Guards(t *testing.T) {
	svc, _, _ := newService()
	ctx := adminContext(t)

	assert.ErrorIs(t, svc.DeleteEmployee(ctx, "admin-1"), employee.ErrCannotDeleteSelf)
	assert.ErrorIs(t, svc.DeleteEmployee(ctx, "emp-9"), employee.ErrEmployeeNotFound)
}
