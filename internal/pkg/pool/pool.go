// Package pool wraps an ants worker pool for post-stream background work
// (synthesis and persistence follow-ups).
package pool

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

// ErrPoolClosed is returned when submitting to a released pool.
var ErrPoolClosed = errors.New("pool: closed")

// Config defines the worker pool configuration.
type Config struct {
	// Capacity is the maximum number of concurrent workers.
	Capacity int

	// ExpiryDuration is the idle worker expiry time.
	ExpiryDuration time.Duration

	// Nonblocking makes Submit fail fast when the pool is saturated.
	Nonblocking bool
}

// DefaultConfig returns a configuration sized for background tasks.
func DefaultConfig() *Config {
	return &Config{
		Capacity:       100,
		ExpiryDuration: 30 * time.Second,
		Nonblocking:    true,
	}
}

// Pool is a named worker pool.
type Pool struct {
	name      string
	pool      *ants.Pool
	closed    atomic.Bool
	submitted atomic.Int64
	completed atomic.Int64
	panics    atomic.Int64
}

// New creates a worker pool with the given configuration.
func New(name string, config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pool{name: name}
	inner, err := ants.NewPool(config.Capacity,
		ants.WithExpiryDuration(config.ExpiryDuration),
		ants.WithNonblocking(config.Nonblocking),
		ants.WithPanicHandler(func(r interface{}) {
			p.panics.Add(1)
			logger.Errorw("worker panic recovered", "pool", name, "panic", r)
		}),
	)
	if err != nil {
		return nil, err
	}
	p.pool = inner

	logger.Infow("Worker pool created", "name", name, "capacity", config.Capacity)
	return p, nil
}

// Submit schedules a task on the pool.
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	err := p.pool.Submit(func() {
		defer p.completed.Add(1)
		task()
	})
	if err != nil {
		return err
	}
	p.submitted.Add(1)
	return nil
}

// Running returns the number of running workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Stats returns submitted/completed/panic counters.
func (p *Pool) Stats() (submitted, completed, panics int64) {
	return p.submitted.Load(), p.completed.Load(), p.panics.Load()
}

// Release shuts the pool down, waiting up to timeout for in-flight tasks.
func (p *Pool) Release(timeout time.Duration) error {
	if p.closed.Swap(true) {
		return nil
	}
	err := p.pool.ReleaseTimeout(timeout)
	logger.Infow("Worker pool released", "name", p.name)
	return err
}
