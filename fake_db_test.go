package lockstep

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sqladapter "github.com/arloliu/lockstep/adapter/sql"
	"github.com/arloliu/lockstep/datasource"
	"github.com/arloliu/lockstep/dialect"
)

var errFakeQuery = errors.New("fake: queries are not supported")

// execRecord is one statement observed by the fake database.
type execRecord struct {
	conn  int
	sql   string
	start time.Time
	end   time.Time
	err   error
}

// fakeDB is an in-memory adapter/sql.DB with per-statement behaviour.
type fakeDB struct {
	mu      sync.Mutex
	records []execRecord
	conns   []*fakeConn

	// behaviour, keyed by exact statement text; set before the run
	delays map[string]time.Duration
	errs   map[string]error
	block  map[string]bool          // wait for ctx cancellation
	hold   map[string]chan struct{} // wait for the channel, ignoring ctx
	panics map[string]string        // panic with the value, once

	failConnAt int // index of the Conn call that fails, -1 for none
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		delays:     map[string]time.Duration{},
		errs:       map[string]error{},
		block:      map[string]bool{},
		hold:       map[string]chan struct{}{},
		panics:     map[string]string{},
		failConnAt: -1,
	}
}

func (d *fakeDB) provider() datasource.Provider {
	return d.providerWith(dialect.Generic())
}

func (d *fakeDB) providerWith(dl dialect.Dialect) datasource.Provider {
	return datasource.Static("fake", datasource.Source{DB: d, Dialect: dl})
}

func (d *fakeDB) Conn(_ context.Context) (sqladapter.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failConnAt == len(d.conns) {
		return nil, errors.New("fake: too many connections")
	}

	c := &fakeConn{db: d, id: len(d.conns)}
	d.conns = append(d.conns, c)

	return c, nil
}

func (d *fakeDB) PingContext(_ context.Context) error { return nil }

func (d *fakeDB) Close() error { return nil }

func (d *fakeDB) connections() []*fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]*fakeConn(nil), d.conns...)
}

func (d *fakeDB) executed() []execRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]execRecord(nil), d.records...)
}

// statementsOn returns the statements executed on one connection, in order.
func (d *fakeDB) statementsOn(conn int) []string {
	var out []string
	for _, r := range d.executed() {
		if r.conn == conn {
			out = append(out, r.sql)
		}
	}

	return out
}

type fakeConn struct {
	db     *fakeDB
	id     int
	closed atomic.Bool
	inTx   atomic.Bool
}

func (c *fakeConn) ExecContext(ctx context.Context, query string, _ ...any) (sql.Result, error) {
	if c.closed.Load() {
		return nil, sql.ErrConnDone
	}

	start := time.Now()
	err := c.behave(ctx, query)

	switch strings.ToUpper(strings.TrimSpace(query)) {
	case "BEGIN", "START TRANSACTION":
		if err == nil {
			c.inTx.Store(true)
		}
	case "COMMIT", "ROLLBACK":
		c.inTx.Store(false)
	}

	c.db.mu.Lock()
	c.db.records = append(c.db.records, execRecord{conn: c.id, sql: query, start: start, end: time.Now(), err: err})
	c.db.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return driver.RowsAffected(1), nil
}

func (c *fakeConn) behave(ctx context.Context, query string) error {
	c.db.mu.Lock()
	delay := c.db.delays[query]
	fail := c.db.errs[query]
	block := c.db.block[query]
	hold := c.db.hold[query]
	msg, panics := c.db.panics[query]
	delete(c.db.panics, query)
	c.db.mu.Unlock()

	if panics {
		panic(msg)
	}

	if hold != nil {
		<-hold
	}

	if block {
		<-ctx.Done()
		return ctx.Err()
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fail
}

func (c *fakeConn) QueryContext(_ context.Context, _ string, _ ...any) (*sql.Rows, error) {
	return nil, errFakeQuery
}

func (c *fakeConn) PingContext(_ context.Context) error { return nil }

func (c *fakeConn) Close() error {
	if c.closed.Swap(true) {
		return sql.ErrConnDone
	}

	return nil
}
