package sqlite

import (
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/voxchat/voxbot/internal/infra"
	"github.com/voxchat/voxbot/resources"
)

type sqliteClient struct {
	db    *sqlx.DB
	mutex sync.RWMutex
}

func NewSQLiteClient(dbPath string) *sqliteClient {
	dbx, err := sqlx.Open("sqlite", filepath.Join(infra.GetWorkDir(), dbPath))
	if err != nil {
		log.WithError(err).Fatalln("cant open db")
	}
	dbx.SetMaxOpenConns(1)

	runMigrations(dbx)
	return &sqliteClient{db: dbx}
}

// NewSQLiteClientAt opens the database at an explicit path, ":memory:"
// included. Used by tests and one-off tooling.
func NewSQLiteClientAt(dbPath string) (*sqliteClient, error) {
	dbx, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	dbx.SetMaxOpenConns(1)

	runMigrations(dbx)
	return &sqliteClient{db: dbx}, nil
}

func runMigrations(dbx *sqlx.DB) {
	migrationsSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: resources.FS,
		Root:       "migrations",
	}
	n, err := migrate.Exec(dbx.DB, "sqlite3", migrationsSource, migrate.Up)
	if err != nil {
		log.WithError(err).Fatalln("migrate up failed")
	}
	if n > 0 {
		log.Infof("applied %d migrations!", n)
	}
}

func (s *sqliteClient) Close() error {
	return s.db.Close()
}
