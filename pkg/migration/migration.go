package migration

import (
	"fmt"
	"path"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func newMigrate(migrationsDir string, dsn string) *migrate.Migrate {
	m, err := migrate.New("file://"+migrationsDir, "mysql://"+dsn)
	if err != nil {
		panic(err)
	}
	return m
}

func finish(err error) {
	if err != nil && err != migrate.ErrNoChange {
		panic(err)
	}
}

// MigrateCommand returns the root migrate command with up / down /
// force subcommands.
func MigrateCommand(dsn string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "migrate",
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "migrate up to the latest version",
			Run: func(cmd *cobra.Command, args []string) {
				m := newMigrate("migrations", dsn)
				finish(m.Up())
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "revert one migration",
			Run: func(cmd *cobra.Command, args []string) {
				m := newMigrate("migrations", dsn)
				finish(m.Steps(-1))
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "force set migration version",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					panic(err)
				}
				m := newMigrate("migrations", dsn)
				finish(m.Force(version))
			},
		},
	)
	return rootCmd
}

// MigrateUpForTesting migrates the test database to the latest version.
func MigrateUpForTesting(rootDir string, dsn string) {
	m := newMigrate(path.Join(rootDir, "migrations"), dsn)
	err := m.Up()
	if err != nil && err != migrate.ErrNoChange {
		panic(fmt.Errorf("migrate up for testing: %w", err))
	}
}
