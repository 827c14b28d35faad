// Package cli implements the maintenance commands exposed by the binary
// alongside the HTTP server: account creation and demo-data seeding.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/openshelf/locallibrary/internal/auth"
	"github.com/openshelf/locallibrary/internal/config"
	"github.com/openshelf/locallibrary/internal/database"
	"github.com/openshelf/locallibrary/internal/entities"
)

// CreateUserCommand creates a user account from the command line.
type CreateUserCommand struct {
	DatabasePath string
	Username     string
	Email        string
	Password     string
	Role         string
}

// NewCreateUserCommand creates a new CreateUserCommand.
func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database")
	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email for the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password for the new account (required, min 12 characters)")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleMember), "Role: admin, librarian or member")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account. Librarians and admins hold the loan-renewal permission.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run creates the account.
func (cmd *CreateUserCommand) Run() error {
	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		return fmt.Errorf("username, email and password are required")
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(db.DB, cfg.Auth)

	user, err := service.CreateUser(cmd.Username, cmd.Email, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return err
	}

	fmt.Printf("Created %s account %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}
