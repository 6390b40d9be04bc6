package sql

import (
	"context"
	"database/sql"
)

// DB represents a database pool that hands out dedicated connections.
//
// This interface wraps *sql.DB.
type DB interface {
	// Conn returns a single connection reserved for the caller until Close.
	Conn(ctx context.Context) (Conn, error)

	// PingContext verifies the database is reachable.
	PingContext(ctx context.Context) error

	// Close closes the pool.
	Close() error
}

// Conn represents a single dedicated database session.
//
// This interface wraps *sql.Conn.
type Conn interface {
	// ExecContext executes a statement without returning any rows.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)

	// QueryContext executes a statement that returns rows.
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// PingContext verifies the connection is alive.
	PingContext(ctx context.Context) error

	// Close returns the connection to the pool.
	Close() error
}

// dbAdapter wraps *sql.DB to implement the DB interface.
type dbAdapter struct {
	db *sql.DB
}

// NewDBAdapter creates a new DB adapter wrapping a *sql.DB.
//
// Parameters:
//   - db: The underlying sql.DB to wrap
//
// Returns:
//   - DB: An adapter implementing the DB interface
func NewDBAdapter(db *sql.DB) DB {
	return &dbAdapter{db: db}
}

// WrapDB is an alias for NewDBAdapter that wraps a *sql.DB.
//
// Example:
//
//	db, _ := sql.Open("mysql", dsn)
//	source := datasource.Source{DB: sqladapter.WrapDB(db), Dialect: mysqldialect.New()}
//
// Parameters:
//   - db: The underlying sql.DB to wrap
//
// Returns:
//   - DB: An adapter implementing the DB interface
func WrapDB(db *sql.DB) DB {
	return NewDBAdapter(db)
}

// Conn reserves a dedicated connection from the pool.
func (a *dbAdapter) Conn(ctx context.Context) (Conn, error) {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	return conn, nil
}

// PingContext verifies the database is reachable.
func (a *dbAdapter) PingContext(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close closes the pool.
func (a *dbAdapter) Close() error {
	return a.db.Close()
}

// Compile-time assertion that *sql.Conn satisfies Conn.
var _ Conn = (*sql.Conn)(nil)
