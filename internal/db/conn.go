package db

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// ErrNotReady is returned by Pool when Init has not completed successfully.
var ErrNotReady = errors.New("database connection not initialized")

// Conn is the process-wide core database handle. Init is idempotent and
// concurrent callers share a single connection attempt.
type Conn struct {
	url     string
	connect func(ctx context.Context, url string) (*pgxpool.Pool, error)

	group singleflight.Group
	mu    sync.RWMutex
	pool  *pgxpool.Pool
}

func NewConn(databaseURL string) *Conn {
	return &Conn{url: databaseURL, connect: NewCorePool}
}

// Init opens the pool on first use. A failed attempt leaves the Conn
// uninitialized so a later call can retry.
func (c *Conn) Init(ctx context.Context) (*pgxpool.Pool, error) {
	if p := c.current(); p != nil {
		return p, nil
	}

	v, err, _ := c.group.Do("init", func() (any, error) {
		if p := c.current(); p != nil {
			return p, nil
		}
		p, err := c.connect(ctx, c.url)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.pool = p
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

func (c *Conn) IsReady() bool {
	return c.current() != nil
}

func (c *Conn) Pool() (*pgxpool.Pool, error) {
	if p := c.current(); p != nil {
		return p, nil
	}
	return nil, ErrNotReady
}

// Ping checks connectivity for readiness probes.
func (c *Conn) Ping(ctx context.Context) error {
	p, err := c.Pool()
	if err != nil {
		return err
	}
	return p.Ping(ctx)
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

func (c *Conn) current() *pgxpool.Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool
}
