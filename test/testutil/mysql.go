package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

// MySQLContainer wraps a MySQL test container.
type MySQLContainer struct {
	Container *mysql.MySQLContainer
	DSN       string
	DB        *sql.DB
}

// MySQLOptions configures the MySQL container.
type MySQLOptions struct {
	// Image is the MySQL image to use. Defaults to "mysql:8.0".
	Image string
	// Database is the database to create. Defaults to "lockstep".
	Database string
	// StartupTimeout bounds the wait for the first successful ping.
	StartupTimeout time.Duration
}

// DefaultMySQLOptions returns default options for the MySQL container.
func DefaultMySQLOptions() MySQLOptions {
	return MySQLOptions{
		Image:          "mysql:8.0",
		Database:       "lockstep",
		StartupTimeout: 2 * time.Minute,
	}
}

// StartMySQL starts a MySQL container and opens a pool on it.
//
// Parameters:
//   - ctx: Context for container operations
//   - opts: Optional configuration (nil uses defaults)
//
// Returns:
//   - *MySQLContainer: Container with DSN and an open pool
//   - error: Error if the container fails to start or accept connections
func StartMySQL(ctx context.Context, opts *MySQLOptions) (*MySQLContainer, error) {
	if opts == nil {
		defaultOpts := DefaultMySQLOptions()
		opts = &defaultOpts
	}

	container, err := mysql.Run(ctx, opts.Image,
		mysql.WithDatabase(opts.Database),
		testcontainers.WithEnv(map[string]string{
			"MYSQL_INITDB_SKIP_TZINFO": "1",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start MySQL container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get MySQL connection string: %w", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("failed to open MySQL pool: %w", err)
	}

	if err := waitForPing(ctx, db, opts.StartupTimeout); err != nil {
		_ = db.Close()
		_ = container.Terminate(context.Background())

		return nil, err
	}

	return &MySQLContainer{Container: container, DSN: dsn, DB: db}, nil
}

// Terminate closes the pool and stops the container.
func (c *MySQLContainer) Terminate(ctx context.Context) error {
	if c.DB != nil {
		_ = c.DB.Close()
	}

	return c.Container.Terminate(ctx)
}

// ExecAll runs statements in order on the container database.
func (c *MySQLContainer) ExecAll(ctx context.Context, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}

	return nil
}

func waitForPing(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("MySQL did not accept connections: %w", err)
		case <-ticker.C:
		}
	}
}
