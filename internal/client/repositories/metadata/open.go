package metadata

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/afero"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/dmitrijs2005/ghosiportal/internal/client/migrations"
	"github.com/dmitrijs2005/ghosiportal/internal/filex"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// RunMigrations applies the embedded migrations. Safe to call repeatedly.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the sqlite database at dsn and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: writes serialise and ":memory:" stays a single database
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Open returns the Store for backend. For "sqlite" path is the database
// file; for "file" it is the directory holding one file per key, created on
// fsys.
func Open(ctx context.Context, fsys afero.Fs, backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		if err := filex.EnsureParentDir(afero.NewOsFs(), path); err != nil {
			return nil, err
		}
		db, err := InitDatabase(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return NewSQLiteStore(db), nil
	case BackendFile:
		if err := filex.EnsureDir(fsys, path); err != nil {
			return nil, err
		}
		return NewFileStore(fsys, path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
