package keysetpager

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Config holds pager settings that are fixed per deployment rather than per
// request.
type Config struct {
	// MaxLimit - upper bound on first/last. Defaults to DefaultMaxLimit.
	MaxLimit int `json:"maxLimit" yaml:"maxLimit" mapstructure:"max_limit"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{MaxLimit: DefaultMaxLimit}
}

// Pager paginates gorm queries over rows of type T. A Pager is immutable;
// With* methods return modified copies, so a single Pager may be shared by
// concurrent requests.
type Pager[T any] struct {
	provider Provider
	executor Executor[T]
	maxLimit int
	logger   zerolog.Logger
}

// NewPager creates a pager resolving sort names through provider and
// executing queries with GORMExecutor.
func NewPager[T any](provider Provider, cfg Config) *Pager[T] {
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultMaxLimit
	}

	return &Pager[T]{
		provider: provider,
		executor: GORMExecutor[T]{},
		maxLimit: cfg.MaxLimit,
		logger:   zerolog.Nop(),
	}
}

// WithMaxLimit overrides Config.MaxLimit.
func (p *Pager[T]) WithMaxLimit(maxLimit int) *Pager[T] {
	c := p.clone()
	c.maxLimit = maxLimit

	return c
}

// WithExecutor replaces the executor running augmented queries.
func (p *Pager[T]) WithExecutor(executor Executor[T]) *Pager[T] {
	c := p.clone()
	c.executor = executor

	return c
}

// WithLogger sets the logger receiving debug events for every page.
func (p *Pager[T]) WithLogger(logger zerolog.Logger) *Pager[T] {
	c := p.clone()
	c.logger = logger

	return c
}

// Paginate fetches a single page of db ordered by the named sort.
//
// Invalid pagination options are reported as *ValidationError. Everything
// else (malformed cursor, unknown sort, store failure) is a different error,
// it is not caused by the end user.
//
// Options may carry their own MaxLimit, it takes precedence over the
// configured one.
func (p *Pager[T]) Paginate(ctx context.Context, db *gorm.DB, sortName string, opts ...Option) (*Page[T], error) {
	if p == nil {
		return nil, fmt.Errorf("cannot paginate: pager is nil")
	}

	req, err := NewRequest(sortName, append(slices.Clone(opts), MaxLimit(p.maxLimit))...)
	if err != nil {
		p.logger.Debug().Err(err).Str("sort", sortName).Msg("pagination arguments rejected")
		return nil, err
	}

	page, fetched, err := p.paginate(ctx, db, req)
	if err != nil {
		p.logger.Debug().Err(err).
			Str("sort", req.SortName()).
			Str("direction", string(req.Direction())).
			Msg("pagination failed")

		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	p.logger.Debug().
		Str("sort", req.SortName()).
		Str("direction", string(req.Direction())).
		Int("limit", req.Limit()).
		Bool("cursor", req.HasCursor()).
		Int("fetched", fetched).
		Bool("has_previous", page.HasPreviousPage).
		Bool("has_next", page.HasNextPage).
		Msg("page assembled")

	return page, nil
}

// MustPaginate is Paginate for call sites that guarantee valid options: a
// *ValidationError panics instead of being returned. Structural errors are
// still returned.
func (p *Pager[T]) MustPaginate(ctx context.Context, db *gorm.DB, sortName string, opts ...Option) (*Page[T], error) {
	page, err := p.Paginate(ctx, db, sortName, opts...)
	if IsValidationError(err) {
		panic(err)
	}

	return page, err
}

func (p *Pager[T]) paginate(ctx context.Context, db *gorm.DB, req *Request) (*Page[T], int, error) {
	if p.executor == nil {
		return nil, 0, fmt.Errorf("pagination executor is nil")
	}

	query, err := Augment(db, req, p.provider)
	if err != nil {
		return nil, 0, err
	}

	rows, err := p.executor.Execute(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page, err := Assemble(rows, req)
	if err != nil {
		return nil, 0, err
	}

	return page, len(rows), nil
}

func (p *Pager[T]) clone() *Pager[T] {
	if p == nil {
		return &Pager[T]{
			executor: GORMExecutor[T]{},
			maxLimit: DefaultMaxLimit,
			logger:   zerolog.Nop(),
		}
	}

	c := *p

	return &c
}
