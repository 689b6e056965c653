package company

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
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

func TestCompanyService_Upsert(t *testing.T) {
	svc := NewCompanyService(memory.NewCompanyRepository())
	ctx := adminContext(t)

	_, err := svc.GetCompany(ctx)
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)

	saved, err := svc.UpsertCompany(ctx, company.UpsertCompanyRequest{
		Name:  " Acme ",
		TaxID: "12.345.678/0001-90",
		Locations: []company.Location{
			{Name: "Sede ", Coordinates: geo.Coordinates{Lat: -3.7319, Lon: -38.5267}, IsMain: true},
			{Name: "Depósito", Coordinates: geo.Coordinates{Lat: -3.79, Lon: -38.59}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "co-1", saved.ID)
	assert.Equal(t, "Acme", saved.Name)
	require.Len(t, saved.Locations, 2)
	assert.Equal(t, "Sede", saved.Locations[0].Name, "order is preserved")

	got, err := svc.GetCompany(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.Locations, got.Locations)
}

func TestCompanyService_Validation(t *testing.T) {
	svc := NewCompanyService(memory.NewCompanyRepository())
	ctx := adminContext(t)
	here := geo.Coordinates{Lat: -3.7, Lon: -38.5}

	tests := []struct {
		name string
		req  company.UpsertCompanyRequest
	}{
		{"missing name", company.UpsertCompanyRequest{}},
		{"duplicate location", company.UpsertCompanyRequest{Name: "Acme", Locations: []company.Location{
			{Name: "A", Coordinates: here}, {Name: "A", Coordinates: here},
		}}},
		{"missing coordinates", company.UpsertCompanyRequest{Name: "Acme", Locations: []company.Location{{Name: "A"}}}},
		{"two main locations", company.UpsertCompanyRequest{Name: "Acme", Locations: []company.Location{
			{Name: "A", Coordinates: here, IsMain: true}, {Name: "B", Coordinates: here, IsMain: true},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpsertCompany(ctx, tt.req)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}
