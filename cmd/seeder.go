package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/book"
	"github.com/codeup/novabook/internal/partner"
	"github.com/codeup/novabook/internal/user"
)

var (
	seedEmail    string
	seedPassword string
	seedName     string
	seedSample   bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with an administrator and optional sample data",
	Long: `Create the first administrator account so the API can be used. With --sample,
also add a handful of books and partners for development. Records that already
exist are left untouched.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "admin@novabook.local", "administrator email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "administrator password (required)")
	seedCmd.Flags().StringVar(&seedName, "name", "Administrator", "administrator display name")
	seedCmd.Flags().BoolVar(&seedSample, "sample", false, "also insert sample books and partners")
	_ = seedCmd.MarkFlagRequired("password")
}

var sampleBooks = []book.CreateBookDTO{
	{Title: "Don Quixote", Author: "Miguel de Cervantes", ISBN: "978-8424116903", PublicationYear: 1605},
	{Title: "One Hundred Years of Solitude", Author: "Gabriel Garcia Marquez", ISBN: "978-0060883287", PublicationYear: 1967},
	{Title: "The Little Prince", Author: "Antoine de Saint-Exupery", ISBN: "978-0156012195", PublicationYear: 1943},
	{Title: "Pedro Paramo", Author: "Juan Rulfo", ISBN: "978-0802133908", PublicationYear: 1955},
}

var samplePartners = []partner.CreatePartnerDTO{
	{Name: "Lucia Fernandez", Address: "Calle Mayor 12", Phone: "555-0101", Email: "lucia@example.com"},
	{Name: "Marco Rossi", Address: "Via Roma 4", Phone: "555-0102", Email: "marco@example.com"},
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	admin, err := deps.Users.CreateUser(ctx, user.CreateUserDTO{
		Name:     seedName,
		Email:    seedEmail,
		Password: seedPassword,
		Roles:    []string{user.RoleAdministrator},
	})
	switch {
	case errors.Is(err, internal.ErrDuplicateEmail):
		fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists; skipped\n", seedEmail)
	case err != nil:
		return fmt.Errorf("failed to create administrator: %w", err)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "seeded administrator %s (id %d)\n", admin.Email, admin.ID)
	}

	if !seedSample {
		return nil
	}
	return seedSampleData(ctx, cmd, deps)
}

func seedSampleData(ctx context.Context, cmd *cobra.Command, deps *Dependencies) error {
	out := cmd.OutOrStdout()

	for _, dto := range sampleBooks {
		b, err := deps.Books.CreateBook(ctx, dto)
		if errors.Is(err, internal.ErrDuplicateISBN) {
			fmt.Fprintf(out, "book %s already exists; skipped\n", dto.ISBN)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed book %q: %w", dto.Title, err)
		}
		fmt.Fprintf(out, "seeded book %q (id %d)\n", b.Title, b.ID)
	}

	for _, dto := range samplePartners {
		existing, err := deps.Partner.FindByEmail(ctx, dto.Email)
		if err != nil && !errors.Is(err, internal.ErrPartnerNotFound) {
			return fmt.Errorf("failed to look up partner %s: %w", dto.Email, err)
		}
		if existing != nil {
			fmt.Fprintf(out, "partner %s already exists; skipped\n", dto.Email)
			continue
		}
		p, err := deps.Partner.CreatePartner(ctx, dto)
		if err != nil {
			return fmt.Errorf("failed to seed partner %q: %w", dto.Name, err)
		}
		fmt.Fprintf(out, "seeded partner %q (id %d)\n", p.Name, p.ID)
	}
	return nil
}
