package client

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	pool "github.com/jolestar/go-commons-pool/v2"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
)

// connectionFactory creates the pooled connections of one profile
type connectionFactory struct {
	config    common.ConnectionConfig
	connector transport.IClientConnector
	seq       atomic.Int64
}

func (f *connectionFactory) MakeObject(ctx context.Context) (*pool.PooledObject, error) {
	config := f.config
	config.Name = fmt.Sprintf("%s#%d", f.config.Name, f.seq.Add(1))
	return pool.NewPooledObject(NewConnection(config, f.connector)), nil
}

func (f *connectionFactory) DestroyObject(ctx context.Context, object *pool.PooledObject) error {
	conn, ok := object.Object.(*Connection)
	if !ok {
		return errors.New("connection factory made wrong type")
	}
	return conn.Close()
}

func (f *connectionFactory) ValidateObject(ctx context.Context, object *pool.PooledObject) bool {
	conn, ok := object.Object.(*Connection)
	return ok && !conn.IsClosed()
}

func (f *connectionFactory) ActivateObject(ctx context.Context, object *pool.PooledObject) error {
	return nil
}

func (f *connectionFactory) PassivateObject(ctx context.Context, object *pool.PooledObject) error {
	return nil
}

// Pool hands out connections of one profile for callers that want to run
// commands in parallel. Every pooled connection has its own transporter, so
// ordering is only guaranteed for commands submitted through the same
// borrowed connection.
type Pool struct {
	pool *pool.ObjectPool
}

// NewPool creates a pool of at most size connections
func NewPool(ctx context.Context, config common.ConnectionConfig, connector transport.IClientConnector, size int) *Pool {
	poolConfig := pool.NewDefaultPoolConfig()
	if size > 0 {
		poolConfig.MaxTotal = size
		poolConfig.MaxIdle = size
	}
	poolConfig.TestOnBorrow = true

	return &Pool{
		pool: pool.NewObjectPool(ctx, &connectionFactory{config: config, connector: connector}, poolConfig),
	}
}

// Borrow returns an idle connection or creates a new one, blocking while the
// pool is exhausted until ctx ends
func (p *Pool) Borrow(ctx context.Context) (*Connection, error) {
	raw, err := p.pool.BorrowObject(ctx)
	if err != nil {
		return nil, err
	}
	conn, ok := raw.(*Connection)
	if !ok {
		return nil, errors.New("connection factory made wrong type")
	}
	return conn, nil
}

// Return gives a borrowed connection back to the pool
func (p *Pool) Return(ctx context.Context, conn *Connection) error {
	return p.pool.ReturnObject(ctx, conn)
}

// Invalidate closes a borrowed connection and removes it from the pool
func (p *Pool) Invalidate(ctx context.Context, conn *Connection) error {
	return p.pool.InvalidateObject(ctx, conn)
}

// Do borrows a connection for the duration of fn. A connection on which fn
// hit a connection failure is invalidated instead of returned.
func (p *Pool) Do(ctx context.Context, fn func(conn *Connection) error) error {
	conn, err := p.Borrow(ctx)
	if err != nil {
		return err
	}

	err = fn(conn)
	if errors.Is(err, common.ErrConnection) || errors.Is(err, common.ErrClosed) {
		if ierr := p.Invalidate(ctx, conn); ierr != nil {
			Logger.Warningf("failed to invalidate pooled connection: %v", ierr)
		}
		return err
	}

	if rerr := p.Return(ctx, conn); rerr != nil {
		Logger.Warningf("failed to return pooled connection: %v", rerr)
	}
	return err
}

// Active returns the number of borrowed connections
func (p *Pool) Active() int {
	return p.pool.GetNumActive()
}

// Idle returns the number of idle connections
func (p *Pool) Idle() int {
	return p.pool.GetNumIdle()
}

// Close closes all idle connections, borrowed connections are closed when returned
func (p *Pool) Close(ctx context.Context) {
	p.pool.Close(ctx)
}
