// Command gabctl runs operator tasks against the GabConcours database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gabconcours.ga/backend/internal/config"
	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/seed"
	"gabconcours.ga/backend/pkg/database"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

const usage = `Usage: gabctl <command> [flags]

Commands:
  seed                  load the provinces
  institution add       create an institution (--name, --acronym)
  create-super-admin    create a super admin (--email, --first-name, --last-name)
  stats                 print platform statistics
  cleanup-orphans       delete uploaded files no document references
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	switch command {
	case "-h", "--help", "help":
		fmt.Print(usage)
		return nil
	case "seed", "institution", "create-super-admin", "stats", "cleanup-orphans":
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Connect(database.Options{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
	})
	if err != nil {
		return err
	}
	if err := entity.AutoMigrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	switch command {
	case "seed":
		return seedCommand(ctx, db)
	case "institution":
		return institutionCommand(ctx, db, args)
	case "create-super-admin":
		return superAdminCommand(ctx, db, args)
	case "stats":
		return statsCommand(ctx, db)
	default:
		return cleanupCommand(ctx, db, cfg)
	}
}

func seedCommand(ctx context.Context, db *gorm.DB) error {
	created, err := seed.SeedProvinces(ctx, db)
	if err != nil {
		return err
	}
	color.Green("%d province(s) created, %d already present", created, len(seed.Provinces)-created)
	return nil
}

func institutionCommand(ctx context.Context, db *gorm.DB, args []string) error {
	if len(args) == 0 || args[0] != "add" {
		return errors.New("usage: gabctl institution add --name <name> --acronym <acronym>")
	}

	flags := pflag.NewFlagSet("institution add", pflag.ContinueOnError)
	name := flags.String("name", "", "full name of the institution")
	acronym := flags.String("acronym", "", "unique acronym, e.g. UOB")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	institution, created, err := seed.Institution(ctx, db, *name, *acronym)
	if err != nil {
		return err
	}
	if !created {
		color.Yellow("Institution %s already exists (%s)", institution.Acronym, institution.ID)
		return nil
	}
	color.Green("Institution %s created (%s)", institution.Acronym, institution.ID)
	return nil
}

func superAdminCommand(ctx context.Context, db *gorm.DB, args []string) error {
	flags := pflag.NewFlagSet("create-super-admin", pflag.ContinueOnError)
	email := flags.String("email", "", "login email")
	firstName := flags.String("first-name", "", "first name")
	lastName := flags.String("last-name", "", "last name")
	if err := flags.Parse(args); err != nil {
		return err
	}

	admin, password, err := seed.SuperAdmin(ctx, db, seed.SuperAdminInput{
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
	})
	if errors.Is(err, seed.ErrAdminExists) {
		return fmt.Errorf("an admin with email %s already exists", *email)
	}
	if err != nil {
		return err
	}

	color.Green("Super admin created")
	fmt.Printf("   Email: %s\n", admin.Email)
	fmt.Printf("   Temporary password: %s\n", password)
	color.Yellow("Change this password after the first login.")
	return nil
}

func statsCommand(ctx context.Context, db *gorm.DB) error {
	stats, err := newStatService(db).Overview(ctx, &entity.Admin{Role: entity.RoleSuperAdmin})
	if err != nil {
		return err
	}

	color.Cyan("\n=== GabConcours ===")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Indicator", "Value"})
	table.Append([]string{"Candidates", strconv.FormatInt(stats.Candidates, 10)})
	table.Append([]string{"Open contests", strconv.FormatInt(stats.OpenContests, 10)})
	table.Append([]string{"Payments", strconv.FormatInt(stats.Payments.Total, 10)})
	table.Append([]string{"Payments validated", strconv.FormatInt(stats.Payments.Validated, 10)})
	table.Append([]string{"Payments pending", strconv.FormatInt(stats.Payments.Pending, 10)})
	table.Append([]string{"Amount collected (FCFA)", stats.Payments.ValidatedAmount.StringFixed(0)})
	table.Render()

	color.Yellow("\nDocuments")
	table = tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Status", "Count"})
	table.Append([]string{string(entity.StatusPending), strconv.FormatInt(stats.Documents.Pending, 10)})
	table.Append([]string{string(entity.StatusValidated), strconv.FormatInt(stats.Documents.Validated, 10)})
	table.Append([]string{string(entity.StatusRejected), strconv.FormatInt(stats.Documents.Rejected, 10)})
	table.Render()

	color.Yellow("\nParticipations")
	statuses := make([]string, 0, len(stats.Participations))
	for status := range stats.Participations {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	table = tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Status", "Count"})
	for _, status := range statuses {
		table.Append([]string{status, strconv.FormatInt(stats.Participations[status], 10)})
	}
	table.Render()
	return nil
}

func cleanupCommand(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	documents, err := newDocumentService(db, cfg)
	if err != nil {
		return err
	}

	removed, err := documents.CleanupOrphans(ctx)
	if err != nil {
		return err
	}
	color.Green("%d orphan file(s) removed from %s", removed, cfg.UploadDir)
	return nil
}
