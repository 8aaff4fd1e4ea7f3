package integration

import (
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/harvestcrm/journal/config"
	"github.com/harvestcrm/journal/pkg/migration"

	// for integration test, must not be imported in any main.go
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// TestCase ...
type TestCase struct {
	DB   *sqlx.DB
	Conf config.Config
}

var initOnce sync.Once

var globalConf config.Config
var globalDB *sqlx.DB

// NewTestCase connects to the shared test database, migrating it up
// first. The connection is reused across test packages.
func NewTestCase() *TestCase {
	initOnce.Do(func() {
		rootDir := findRootDir()

		conf := config.LoadTestConfig(rootDir)
		migration.MigrateUpForTesting(rootDir, conf.MySQL.DSN())

		db := conf.MySQL.MustConnect()

		globalConf = conf
		globalDB = db
	})

	return &TestCase{
		Conf: globalConf,
		DB:   globalDB,
	}
}

// Truncate ...
func (tc *TestCase) Truncate(tables ...string) {
	tc.DB.MustExec("SET FOREIGN_KEY_CHECKS = 0")
	for _, table := range tables {
		tc.DB.MustExec(fmt.Sprintf("TRUNCATE %s", table))
	}
	tc.DB.MustExec("SET FOREIGN_KEY_CHECKS = 1")
}

func findRootDir() string {
	workdir, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	directory := workdir
	for {
		entries, err := os.ReadDir(directory)
		if err != nil {
			panic(err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if entry.Name() == "go.mod" {
				return directory
			}
		}

		directory = path.Dir(directory)
	}
}
