package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database"
)

// MigrateCommand creates or upgrades the database schema and seeds the
// default categories.
type MigrateCommand struct {
	DatabasePath string

	out io.Writer
}

func NewMigrateCommand() *MigrateCommand {
	return &MigrateCommand{out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)

	envPath := os.Getenv("DATABASE_PATH")
	if envPath == "" {
		envPath = config.DefaultDatabasePath
	}
	fs.StringVar(&cmd.DatabasePath, "db", envPath, "Path to the SQLite database (or set DATABASE_PATH)")

	return fs.Parse(args)
}

// Run opens the database, which applies migrations and seeds, then closes it.
func (cmd *MigrateCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	fmt.Fprintf(cmd.out, "Database %s is up to date\n", cmd.DatabasePath)
	return nil
}
