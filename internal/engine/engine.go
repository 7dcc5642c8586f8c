package engine

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/metrics"
)

// DefaultPlanCacheSize is the default number of compiled plans kept per engine.
const DefaultPlanCacheSize = 64

// Matrix is a caller-owned integer sink with one row per model node and one
// column per causal type.
//
// Row(i) must return the backing storage of row i: the engine writes into it
// and never keeps a reference past the call. ir.IntMatrix is the dense
// implementation.
type Matrix interface {
	Rows() int
	Cols() int
	Row(i int) []int
}

// Engine realizes structural causal models, evaluates queries and aggregates
// type probabilities.
//
// An Engine is safe for concurrent use. Compiled plans are immutable and
// shared; each call owns its scratch buffers.
//
// CRITICAL: results never depend on the worker count or on whether a plan
// came from the cache.
type Engine struct {
	workers  int
	logger   *slog.Logger
	metrics  *metrics.Registry
	maxTypes int

	cacheSize int
	mu        sync.Mutex
	plans     map[string]*plan
	planOrder []string // insertion order, oldest first
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the worker pool size. Values below 1 mean one worker.
//
// Default: runtime.NumCPU()
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithLogger sets the structured logger.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records engine activity into r. A nil registry disables metrics.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithMaxCausalTypes limits the causal-type space. A limit <= 0 disables
// the check.
//
// Default: 1<<26 (DefaultMaxCausalTypes)
func WithMaxCausalTypes(n int) Option {
	return func(e *Engine) {
		e.maxTypes = n
	}
}

// WithPlanCache sets how many compiled plans are kept, keyed by model hash.
// Zero disables the cache.
//
// Default: 64 (DefaultPlanCacheSize)
func WithPlanCache(size int) Option {
	return func(e *Engine) {
		e.cacheSize = max(size, 0)
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		workers:   runtime.NumCPU(),
		logger:    slog.Default(),
		maxTypes:  DefaultMaxCausalTypes,
		cacheSize: DefaultPlanCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.plans = make(map[string]*plan, e.cacheSize)
	return e
}

// Workers returns the configured worker pool size.
func (e *Engine) Workers() int { return e.workers }

// TypeSpace compiles m and returns its causal-type space.
func (e *Engine) TypeSpace(m *ir.Model) (*TypeSpace, error) {
	p, err := e.planFor(m)
	if err != nil {
		return nil, err
	}
	return p.space, nil
}

// planFor returns the compiled plan for m, from the cache when possible.
func (e *Engine) planFor(m *ir.Model) (*plan, error) {
	if err := ir.CheckNormalized(m); err != nil {
		var ne *ir.NormalizationError
		errors.As(err, &ne)
		return nil, newError(ErrCodeInvalidModel, ne.Node, "%v", err)
	}
	hash, err := ir.ModelHash(m)
	if err != nil {
		return nil, newError(ErrCodeInvalidModel, "", "hash model: %v", err)
	}

	if e.cacheSize > 0 {
		e.mu.Lock()
		p, ok := e.plans[hash]
		e.mu.Unlock()
		e.metrics.RecordPlanCache(ok)
		if ok {
			return p, nil
		}
	}

	p, err := compilePlan(m, hash)
	if err != nil {
		return nil, err
	}
	if err := checkQuota(p.space.Size(), e.maxTypes); err != nil {
		return nil, err
	}

	if e.cacheSize > 0 {
		e.storePlan(p)
	}
	return p, nil
}

func (e *Engine) storePlan(p *plan) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.plans[p.hash]; ok {
		return
	}
	for len(e.planOrder) >= e.cacheSize {
		oldest := e.planOrder[0]
		e.planOrder = e.planOrder[1:]
		delete(e.plans, oldest)
		e.metrics.RecordPlanEviction()
		e.logger.Warn("plan cache eviction",
			"model_hash", oldest,
			"cache_size", e.cacheSize,
		)
	}
	e.plans[p.hash] = p
	e.planOrder = append(e.planOrder, p.hash)
}

// cachedPlans reports how many plans are cached.
func (e *Engine) cachedPlans() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.plans)
}
