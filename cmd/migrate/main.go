// Package main applies or rolls back the evaluator's database schema.
//
// Usage:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down -steps=1
//	go run ./cmd/migrate version
//
// The connection string comes from -database-url or DATABASE_URL (a .env
// file in the working directory is honored).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"lightwatch/internal/db"
)

// migrator is the subset of migration operations the CLI drives.
type migrator struct {
	up      func(url string) error
	down    func(url string, steps int) error
	version func(url string) (uint, bool, error)
}

var defaultMigrator = migrator{
	up:      db.MigrateUp,
	down:    db.MigrateDown,
	version: schemaVersion,
}

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Getenv("DATABASE_URL"), defaultMigrator, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, envURL string, m migrator, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("expected a command: up, down or version")
	}
	cmd, rest := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)
	databaseURL := fs.String("database-url", envURL, "PostgreSQL connection string")
	steps := fs.Int("steps", 1, "number of migrations to roll back (down only)")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if *databaseURL == "" {
		return errors.New("no database URL: set DATABASE_URL or pass -database-url")
	}

	switch cmd {
	case "up":
		if err := m.up(*databaseURL); err != nil {
			return err
		}
		fmt.Fprintln(out, "schema is up to date")
	case "down":
		if err := m.down(*databaseURL, *steps); err != nil {
			return err
		}
		fmt.Fprintf(out, "rolled back %d migration(s)\n", *steps)
	case "version":
		v, dirty, err := m.version(*databaseURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "version %d (dirty=%t)\n", v, dirty)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func schemaVersion(url string) (uint, bool, error) {
	m, err := db.NewMigrator(url)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
