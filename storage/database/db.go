package database

import (
	"context"
	"io/fs"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // sqlite

	"github.com/trezcool/hostel/core"
	appfs "github.com/trezcool/hostel/fs"
)

// Engines, also the database/sql driver names.
const (
	EnginePostgres = "postgres"
	EnginePgx      = "pgx"
	EngineSQLite   = "sqlite"
)

var errUnknownEngine = errors.New("unknown database engine")

func postgresURL(conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the configured database and waits until it answers.
func Open(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	switch conf.Database.Engine {
	case EnginePostgres, EnginePgx:
		db, err := sqlx.Open(conf.Database.Engine, postgresURL(conf))
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		db.SetMaxOpenConns(conf.Database.MaxOpenConns)
		db.SetMaxIdleConns(conf.Database.MaxOpenConns / 2)
		db.SetConnMaxLifetime(time.Hour)
		if err := ping(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	case EngineSQLite:
		return OpenSQLite(ctx, conf.Database.Name)
	default:
		return nil, errors.Wrap(errUnknownEngine, conf.Database.Engine)
	}
}

// OpenSQLite opens an embedded database. dsn is a file path or a URI such as
// "file:hostel?mode=memory&cache=shared". A single connection is kept: SQLite allows one writer at a time
// and an in-memory database lives only as long as its connection.
func OpenSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(EngineSQLite, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping cancelled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Dialect returns the goose dialect matching a database/sql driver name.
func Dialect(driverName string) (goose.Dialect, error) {
	switch driverName {
	case EnginePostgres, EnginePgx:
		return goose.DialectPostgres, nil
	case EngineSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", errors.Wrap(errUnknownEngine, driverName)
	}
}

// MigrationsFS is the embedded migrations directory.
func MigrationsFS() (fs.FS, error) {
	return fs.Sub(appfs.FS, "migrations")
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	dialect, err := Dialect(db.DriverName())
	if err != nil {
		return err
	}
	fsys, err := MigrationsFS()
	if err != nil {
		return errors.Wrap(err, "loading migrations")
	}
	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return errors.Wrap(err, "preparing migrations")
	}
	if _, err := provider.Up(ctx); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
