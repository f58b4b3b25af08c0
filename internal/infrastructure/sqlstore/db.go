package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS app_user (
	username TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS credential (
	id TEXT PRIMARY KEY,
	secret_hash TEXT NOT NULL,
	label TEXT NOT NULL,
	scopes TEXT NOT NULL, -- space separated
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_code (
	code TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	scopes TEXT NOT NULL, -- space separated
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (username) REFERENCES app_user(username) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS client (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name VARCHAR(100) NOT NULL,
	cpf CHAR(11) NOT NULL UNIQUE,
	email VARCHAR(100) NOT NULL UNIQUE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	-- sqlite does not enforce VARCHAR lengths
	CONSTRAINT client_name_length CHECK (length(name) <= 100),
	CONSTRAINT client_email_length CHECK (length(email) <= 100)
);

CREATE INDEX IF NOT EXISTS idx_auth_codes_expires_at ON auth_code(expires_at);
CREATE INDEX IF NOT EXISTS idx_clients_created_at ON client(created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS app_user (
	username TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS credential (
	id TEXT PRIMARY KEY,
	secret_hash TEXT NOT NULL,
	label TEXT NOT NULL,
	scopes TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_code (
	code TEXT PRIMARY KEY,
	username TEXT NOT NULL REFERENCES app_user(username) ON DELETE CASCADE,
	scopes TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS client (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	cpf CHAR(11) NOT NULL,
	email VARCHAR(100) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT client_cpf_key UNIQUE (cpf),
	CONSTRAINT client_email_key UNIQUE (email)
);

CREATE INDEX IF NOT EXISTS idx_auth_codes_expires_at ON auth_code(expires_at);
CREATE INDEX IF NOT EXISTS idx_clients_created_at ON client(created_at);
`

type DB struct {
	*sqlx.DB
}

// New opens the database for driver and creates the schema if needed.
// For sqlite, dsn is a file path or ":memory:".
func New(driver, dsn string) (*DB, error) {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = sqliteSchema
	case DriverPostgres:
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every connection to an in-memory database opens its own empty one
	if driver == DriverSQLite && isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db}, nil
}

// sqlitePragmas run on every new connection. A PRAGMA sent through db.Exec
// reaches a single pooled connection only, so they travel in the DSN.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
}

func sqliteDSN(dsn string) string {
	params := make([]string, 0, len(sqlitePragmas))
	for _, pragma := range sqlitePragmas {
		params = append(params, "_pragma="+pragma)
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// affected reports whether a write matched at least one row
func affected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
