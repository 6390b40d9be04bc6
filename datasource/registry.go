// Package datasource resolves the datasource named by a scenario into a
// connection pool and the dialect that goes with it.
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	sqladapter "github.com/arloliu/lockstep/adapter/sql"
	"github.com/arloliu/lockstep/dialect"
	"github.com/arloliu/lockstep/internal/logging"
	"github.com/arloliu/lockstep/types"
)

// Source is an opened datasource.
type Source struct {
	DB      sqladapter.DB
	Dialect dialect.Dialect
}

// Provider resolves datasource names.
//
// An empty name selects the default datasource.
type Provider interface {
	Open(ctx context.Context, name string) (Source, error)
}

// Registry opens configured datasources lazily and keeps their pools for
// reuse across runs. The first configured datasource is the default.
//
// Thread-safe for concurrent use.
type Registry struct {
	configs []Config
	logger  types.Logger

	mu      sync.Mutex
	sources map[string]Source
	closed  bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger types.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logging.OrDiscard(logger)
	}
}

// NewRegistry creates a registry for the given datasource configurations.
//
// Parameters:
//   - configs: Datasource configurations; the first one is the default
//   - opts: Registry options
//
// Returns:
//   - *Registry: A new registry
//   - error: Validation error
func NewRegistry(configs []Config, opts ...RegistryOption) (*Registry, error) {
	if err := Validate(configs); err != nil {
		return nil, err
	}

	r := &Registry{
		configs: append([]Config(nil), configs...),
		logger:  logging.Discard,
		sources: make(map[string]Source, len(configs)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Names returns the configured datasource names in configuration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.configs))
	for i, cfg := range r.configs {
		names[i] = cfg.Name
	}

	return names
}

// Open returns the pool for name, opening and pinging it on first use.
//
// Parameters:
//   - ctx: Context for the initial ping
//   - name: Datasource name; empty selects the first configured datasource
//
// Returns:
//   - Source: The opened datasource
//   - error: types.ErrNoDatasource, types.ErrUnknownDatasource or an open error
func (r *Registry) Open(ctx context.Context, name string) (Source, error) {
	cfg, err := r.lookup(name)
	if err != nil {
		return Source{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Source{}, fmt.Errorf("datasource %q: registry is closed", cfg.Name)
	}

	if src, ok := r.sources[cfg.Name]; ok {
		return src, nil
	}

	d, err := DialectFor(cfg)
	if err != nil {
		return Source{}, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return Source{}, fmt.Errorf("datasource %q: %w", cfg.Name, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return Source{}, fmt.Errorf("datasource %q: %w", cfg.Name, err)
	}

	src := Source{DB: sqladapter.WrapDB(db), Dialect: d}
	r.sources[cfg.Name] = src

	r.logger.Info("datasource opened", "name", cfg.Name, "driver", cfg.Driver, "dialect", d.Name())

	return src, nil
}

// Close closes every opened pool. Further Open calls fail.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var result *multierror.Error
	for name, src := range r.sources {
		if err := src.DB.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("datasource %q: %w", name, err))
		}
	}
	r.sources = nil

	return result.ErrorOrNil()
}

func (r *Registry) lookup(name string) (Config, error) {
	if len(r.configs) == 0 {
		return Config{}, types.ErrNoDatasource
	}

	if name == "" {
		return r.configs[0], nil
	}

	for _, cfg := range r.configs {
		if cfg.Name == name {
			return cfg, nil
		}
	}

	return Config{}, fmt.Errorf("%w: %q", types.ErrUnknownDatasource, name)
}

type staticProvider struct {
	name   string
	source Source
}

// Static returns a provider that serves one already opened source under
// name. It answers the empty name too.
//
// Example:
//
//	db, _ := sql.Open("mysql", dsn)
//	provider := datasource.Static("bank", datasource.Source{
//	    DB:      sqladapter.WrapDB(db),
//	    Dialect: mysql.New(),
//	})
func Static(name string, source Source) Provider {
	return &staticProvider{name: name, source: source}
}

func (p *staticProvider) Open(_ context.Context, name string) (Source, error) {
	if name != "" && name != p.name {
		return Source{}, fmt.Errorf("%w: %q", types.ErrUnknownDatasource, name)
	}

	return p.source, nil
}
