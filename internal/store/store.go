package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver, registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a conditional write matched no row,
	// e.g. submitting an attempt twice.
	ErrConflict = errors.New("conflict")
)

// sqlitePragmas are applied to every pooled SQLite connection through
// the DSN, so they hold no matter which connection serves a query.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	dialect string
	sb      *entsql.DialectBuilder
}

// Open connects to the database and runs auto-migration. driver is
// "sqlite" (dsn is a file path or modernc DSN) or "postgres" (dsn is a
// libpq-style URL). An empty driver means sqlite.
func Open(driver, dsn string) (*Store, error) {
	var (
		db          *sql.DB
		dialectName string
		err         error
	)

	switch strings.ToLower(driver) {
	case "", DriverSQLite, "sqlite3":
		dialectName = dialect.SQLite
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			// One writer at a time; SQLite serializes writes anyway and this
			// keeps in-memory databases on a single connection.
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres, "pgx", "postgresql":
		dialectName = dialect.Postgres
		db, err = sql.Open("pgx", dsn)
		if err == nil {
			db.SetMaxOpenConns(10)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, entsql.OpenDB(dialectName, db)); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, dialect: dialectName, sb: entsql.Dialect(dialectName)}, nil
}

// sqliteDSN appends the connection pragmas to a SQLite file path or DSN.
func sqliteDSN(dsn string) string {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(dsn)
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SourceRepo returns a SourceRepo backed by this store.
func (s *Store) SourceRepo() SourceRepo { return &sourceRepo{s: s} }

// QuizRepo returns a QuizRepo backed by this store.
func (s *Store) QuizRepo() QuizRepo { return &quizRepo{s: s} }

// AttemptRepo returns an AttemptRepo backed by this store.
func (s *Store) AttemptRepo() AttemptRepo { return &attemptRepo{s: s} }

// ShareLinkRepo returns a ShareLinkRepo backed by this store.
func (s *Store) ShareLinkRepo() ShareLinkRepo { return &shareLinkRepo{s: s} }

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo { return &eventRepo{s: s} }

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querierBuilder is the common shape of ent's SQL builders.
type querierBuilder interface {
	Query() (string, []any)
}

func execBuilder(ctx context.Context, q querier, b querierBuilder) (sql.Result, error) {
	stmt, args := b.Query()
	return q.ExecContext(ctx, stmt, args...)
}

func queryBuilder(ctx context.Context, q querier, b querierBuilder) (*sql.Rows, error) {
	stmt, args := b.Query()
	return q.QueryContext(ctx, stmt, args...)
}

func queryRowBuilder(ctx context.Context, q querier, b querierBuilder) *sql.Row {
	stmt, args := b.Query()
	return q.QueryRowContext(ctx, stmt, args...)
}

// withTx runs fn in a transaction, rolling back on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DefaultDBPath resolves the SQLite database file path in priority order:
// 1. QUESTIONSMITH_DB environment variable
// 2. $XDG_DATA_HOME/questionsmith/questionsmith.db
// 3. ~/.local/share/questionsmith/questionsmith.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUESTIONSMITH_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "questionsmith", "questionsmith.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
