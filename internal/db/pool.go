package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const maxConnectAttempts = 3

// ErrConnectExhausted means the bounded reconnect budget is spent; callers get
// a hard failure instead of hanging on a dead pool.
var ErrConnectExhausted = errors.New("db: connect attempts exhausted")

// Pool wraps pgxpool with an explicit lifecycle (Init / HealthCheck / Close).
// It is constructed once at process root and injected; there is no package
// level singleton. The underlying pgx pool is created lazily and recreated
// when the driver reports the connection closed, bounded to
// maxConnectAttempts per (re)connect.
type Pool struct {
	url string
	log *slog.Logger

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func New(url string, log *slog.Logger) (*Pool, error) {
	if url == "" {
		return nil, errors.New("db: connection string is required")
	}

	return &Pool{url: url, log: log}, nil
}

// Init eagerly establishes the pool. Optional; Pgx connects lazily.
func (p *Pool) Init(ctx context.Context) error {
	_, err := p.Pgx(ctx)
	return err
}

// Pgx returns the live pgx pool, (re)connecting if needed.
func (p *Pool) Pgx(ctx context.Context) (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		return p.pool, nil
	}

	return p.connectLocked(ctx)
}

func (p *Pool) connectLocked(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(p.url)
	if err != nil {
		return nil, fmt.Errorf("db: parse config: %w", err)
	}

	cfg.MaxConns = 5

	var lastErr error

	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, 5*time.Second)

		pool, err := pgxpool.NewWithConfig(cctx, cfg)
		if err == nil {
			err = pool.Ping(cctx)
			if err == nil {
				cancel()
				p.pool = pool
				return pool, nil
			}
			pool.Close()
		}
		cancel()

		lastErr = err
		p.log.Warn("db connect attempt failed",
			"attempt", attempt,
			"err", truncate(err.Error(), 200),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrConnectExhausted, lastErr)
}

// HealthCheck pings the database and reports round-trip latency. A failed
// ping drops the pool so the next caller reconnects.
func (p *Pool) HealthCheck(ctx context.Context) (time.Duration, error) {
	pool, err := p.Pgx(ctx)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	err = pool.Ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		p.log.Warn("db health check failed", "err", truncate(err.Error(), 200))
		p.Reset()
		return elapsed, err
	}

	return elapsed, nil
}

// Reset drops the current pool; the next Pgx call reconnects.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}

func (p *Pool) Close() {
	p.Reset()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
