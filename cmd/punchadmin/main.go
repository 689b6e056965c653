package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/config"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/punchclock-backend-go/internal/service/auth"
	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	root := &cobra.Command{
		Use:           "punchadmin",
		Short:         "Provision the punch clock database and issue access tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newBootstrapCmd(), newTokenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*config.Config, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgresql.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}

func newBootstrapCmd() *cobra.Command {
	var (
		companyID   string
		companyName string
		adminName   string
		adminEmail  string
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create a company with its first administrator and print an admin token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, db, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			txManager := postgresql.NewTxManager(db)
			companyRepo := postgresql.NewCompanyRepository(db)
			employeeRepo := postgresql.NewEmployeeRepository(db)

			var admin employee.Employee
			err = txManager.WithinTransaction(ctx, func(ctx context.Context) error {
				co, err := companyRepo.Upsert(ctx, company.Company{ID: companyID, Name: companyName})
				if err != nil {
					return fmt.Errorf("failed to create company: %w", err)
				}
				admin, err = employeeRepo.Create(ctx, employee.Employee{
					CompanyID:        co.ID,
					DisplayName:      adminName,
					Email:            strings.ToLower(strings.TrimSpace(adminEmail)),
					Status:           employee.StatusActive,
					AllowedLocations: []string{employee.TagExternal},
				})
				if err != nil {
					return fmt.Errorf("failed to create administrator: %w", err)
				}
				return nil
			})
			if err != nil {
				return err
			}

			tokenSvc := serviceAuth.NewTokenService(employeeRepo, jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration))
			token, err := tokenSvc.IssueFor(ctx, admin.CompanyID, auth.IssueTokenRequest{EmployeeID: admin.ID, IsAdmin: true})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"company_id":  admin.CompanyID,
				"employee_id": admin.ID,
				"token":       token,
			})
		},
	}

	cmd.Flags().StringVar(&companyID, "company-id", "", "Company identifier")
	cmd.Flags().StringVar(&companyName, "company-name", "", "Company name")
	cmd.Flags().StringVar(&adminName, "name", "", "Administrator display name")
	cmd.Flags().StringVar(&adminEmail, "email", "", "Administrator email")
	for _, name := range []string{"company-id", "company-name", "name", "email"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage access tokens",
	}

	var (
		companyID  string
		employeeID string
		isAdmin    bool
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue an access token for an active employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, db, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			tokenSvc := serviceAuth.NewTokenService(
				postgresql.NewEmployeeRepository(db),
				jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration),
			)
			token, err := tokenSvc.IssueFor(ctx, companyID, auth.IssueTokenRequest{EmployeeID: employeeID, IsAdmin: isAdmin})
			if err != nil {
				return err
			}
			return printJSON(cmd, token)
		},
	}
	issue.Flags().StringVar(&companyID, "company", "", "Company of the employee")
	issue.Flags().StringVar(&employeeID, "employee", "", "Employee to issue the token for")
	issue.Flags().BoolVar(&isAdmin, "admin", false, "Grant the admin claim")
	_ = issue.MarkFlagRequired("company")
	_ = issue.MarkFlagRequired("employee")

	cmd.AddCommand(issue)
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
