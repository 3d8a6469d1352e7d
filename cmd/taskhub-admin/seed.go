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

var seedOrganizations = []struct{ Name, Location string }{
	{"TechCorp Solutions", "San Francisco, CA"},
	{"Global Finance Group", "New York, NY"},
	{"Healthcare Innovations Ltd", "Boston, MA"},
	{"Green Energy Partners", "Austin, TX"},
	{"Digital Marketing Agency", "Los Angeles, CA"},
}

var seedIndustries = []struct {
	Name     string
	Location string
	Contacts []entity.ContactPoint
}{
	{"Technology Solutions Inc.", "San Francisco, CA", []entity.ContactPoint{
		{Name: "John Smith", Email: "john.smith@techsolutions.com", Phone: "+1-555-0101"},
		{Name: "Sarah Johnson", Email: "sarah.johnson@techsolutions.com", Phone: "+1-555-0102"},
	}},
	{"Green Energy Corp", "Austin, TX", []entity.ContactPoint{
		{Name: "Michael Brown", Email: "michael.brown@greenenergy.com", Phone: "+1-555-0201"},
	}},
	{"Healthcare Innovations", "Boston, MA", []entity.ContactPoint{
		{Name: "Dr. Emily Davis", Email: "emily.davis@healthinnovations.com", Phone: "+1-555-0301"},
		{Name: "Robert Wilson", Email: "robert.wilson@healthinnovations.com", Phone: "+1-555-0302"},
	}},
	{"Financial Services LLC", "New York, NY", []entity.ContactPoint{
		{Name: "Jessica Miller", Email: "jessica.miller@finservices.com", Phone: "+1-555-0401"},
	}},
	{"Manufacturing Excellence", "Detroit, MI", []entity.ContactPoint{
		{Name: "David Garcia", Email: "david.garcia@manufacturing.com", Phone: "+1-555-0501"},
		{Name: "Lisa Anderson", Email: "lisa.anderson@manufacturing.com", Phone: "+1-555-0502"},
	}},
	{"Retail Dynamics", "Los Angeles, CA", []entity.ContactPoint{
		{Name: "Christopher Taylor", Email: "chris.taylor@retaildynamics.com", Phone: "+1-555-0601"},
	}},
	{"Educational Technologies", "Seattle, WA", []entity.ContactPoint{
		{Name: "Amanda White", Email: "amanda.white@edutech.com", Phone: "+1-555-0701"},
		{Name: "Kevin Martinez", Email: "kevin.martinez@edutech.com", Phone: "+1-555-0702"},
	}},
	{"Transportation Logistics", "Chicago, IL", []entity.ContactPoint{
		{Name: "Michelle Rodriguez", Email: "michelle.rodriguez@translogistics.com", Phone: "+1-555-0801"},
	}},
	{"Food & Beverage Co.", "Denver, CO", []entity.ContactPoint{
		{Name: "Thomas Lee", Email: "thomas.lee@foodbeverage.com", Phone: "+1-555-0901"},
		{Name: "Jennifer Clark", Email: "jennifer.clark@foodbeverage.com", Phone: "+1-555-0902"},
	}},
	{"Real Estate Ventures", "Miami, FL", []entity.ContactPoint{
		{Name: "Daniel Lewis", Email: "daniel.lewis@realestateventures.com", Phone: "+1-555-1001"},
	}},
}

// Job titles from the old directory collapse onto the three designations:
// managers become PPI, everyone else User.
var seedEmployees = []struct {
	FirstName, LastName, Email, Phone string
	Designation                       entity.Designation
}{
	{"John", "Smith", "john.smith@curin.com", "+1234567890", entity.DesignationUser},
	{"Alice", "Johnson", "alice.johnson@curin.com", "+1234567892", entity.DesignationUser},
	{"Michael", "Brown", "michael.brown@curin.com", "+1234567894", entity.DesignationPPI},
	{"Sarah", "Davis", "sarah.davis@curin.com", "+1234567896", entity.DesignationPPI},
	{"David", "Wilson", "david.wilson@curin.com", "+1234567898", entity.DesignationUser},
	{"Emily", "Taylor", "emily.taylor@curin.com", "+1234567800", entity.DesignationUser},
	{"Robert", "Anderson", "robert.anderson@curin.com", "+1234567802", entity.DesignationUser},
	{"Jennifer", "Martinez", "jennifer.martinez@curin.com", "+1234567804", entity.DesignationPPI},
	{"Christopher", "Garcia", "christopher.garcia@curin.com", "+1234567806", entity.DesignationUser},
	{"Amanda", "Rodriguez", "amanda.rodriguez@curin.com", "+1234567808", entity.DesignationPPI},
}

func newSeedCmd() *cobra.Command {
	var employeePassword string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample organizations, industries and employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			s := &seeder{
				organizations: postgres.NewOrganizationRepository(db),
				industries:    postgres.NewIndustryRepository(db),
				employees:     postgres.NewEmployeeRepository(db),
				passwords:     password.NewBcryptPasswordService(password.DefaultCost),
				out:           cmd.OutOrStdout(),
			}
			return s.run(cmd.Context(), employeePassword)
		},
	}
	cmd.Flags().StringVar(&employeePassword, "employee-password", "Welcome123!", "initial password for seeded employees")
	return cmd
}

type seeder struct {
	organizations outbound.OrganizationRepository
	industries    outbound.IndustryRepository
	employees     outbound.EmployeeRepository
	passwords     outbound.PasswordService
	out           io.Writer
}

func (s *seeder) run(ctx context.Context, employeePassword string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for i, o := range seedOrganizations {
		org := entity.NewOrganization(o.Name, o.Location)
		if err := s.organizations.Create(ctx, org); err != nil {
			return fmt.Errorf("failed to seed organization %q: %w", o.Name, err)
		}
		fmt.Fprintf(s.out, "%d. %s - %s\n", i+1, org.Name, org.Location)
	}

	for i, in := range seedIndustries {
		industry := entity.NewIndustry(in.Name, in.Location, in.Contacts)
		if err := s.industries.Create(ctx, industry); err != nil {
			return fmt.Errorf("failed to seed industry %q: %w", in.Name, err)
		}
		fmt.Fprintf(s.out, "%d. %s - %s (%d contacts)\n", i+1, industry.Name, industry.Location, len(industry.ContactPoints))
	}

	hash, err := s.passwords.HashPassword(employeePassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	for i, e := range seedEmployees {
		_, err := s.employees.FindByEmail(ctx, e.Email)
		if err == nil {
			fmt.Fprintf(s.out, "%d. %s already exists, skipped\n", i+1, e.Email)
			continue
		}
		if !errors.Is(err, outbound.ErrNotFound) {
			return fmt.Errorf("failed to look up employee %q: %w", e.Email, err)
		}

		emp := entity.NewEmployee(e.FirstName, e.LastName, e.Email, e.Phone, e.Designation, nil)
		emp.PasswordHash = hash
		if err := s.employees.Create(ctx, emp); err != nil {
			return fmt.Errorf("failed to seed employee %q: %w", e.Email, err)
		}
		fmt.Fprintf(s.out, "%d. %s - %s\n", i+1, emp.FullName(), emp.Designation)
	}

	fmt.Fprintln(s.out, "Seeding completed")
	return nil
}
