package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/fixora/taskhub/infrastructure/adapter/postgres"
	"github.com/fixora/taskhub/infrastructure/service/password"
)

type adminInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Designation string
}

func newCreateAdminCmd() *cobra.Command {
	in := adminInput{}
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a manager account that can log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return createAdmin(ctx, postgres.NewEmployeeRepository(db),
				password.NewBcryptPasswordService(password.DefaultCost), in, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "login password (min 8 characters)")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "User", "last name")
	cmd.Flags().StringVar(&in.Designation, "designation", string(entity.DesignationLPI), "LPI or PPI")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, repo outbound.EmployeeRepository, passwords outbound.PasswordService, in adminInput, out io.Writer) error {
	designation := entity.Designation(in.Designation)
	if !designation.IsManager() {
		return fmt.Errorf("designation must be LPI or PPI, got %q", in.Designation)
	}

	admin := entity.NewEmployee(in.FirstName, in.LastName, in.Email, "", designation, nil)
	if err := admin.Validate(); err != nil {
		return err
	}

	_, err := repo.FindByEmail(ctx, admin.Email)
	switch {
	case err == nil:
		return fmt.Errorf("employee %s already exists", admin.Email)
	case !errors.Is(err, outbound.ErrNotFound):
		return fmt.Errorf("failed to look up employee: %w", err)
	}

	hash, err := passwords.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin.PasswordHash = hash

	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Fprintf(out, "Admin created: id=%s email=%s designation=%s\n", admin.ID, admin.Email, admin.Designation)
	return nil
}
