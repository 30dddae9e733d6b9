package invoker

import (
	"errors"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var ErrPoolClosed = errors.New("invoker: connection pool closed")

// ConnPool reuses gRPC ClientConns per target address.
type ConnPool struct {
	mu       sync.RWMutex
	conns    map[string]*pooledConn
	dialOpts []grpc.DialOption
	closed   bool
}

type pooledConn struct {
	conn *grpc.ClientConn
}

// NewConnPool creates a connection pool. Connections are insecure unless
// opts say otherwise.
func NewConnPool(opts ...grpc.DialOption) *ConnPool {
	return &ConnPool{
		conns:    make(map[string]*pooledConn),
		dialOpts: append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...),
	}
}

// GetOrCreate returns a connection for the address if it exists, otherwise creates a new one.
func (p *ConnPool) GetOrCreate(address string) (*grpc.ClientConn, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}
	entry, ok := p.conns[address]
	p.mu.RUnlock()
	if ok {
		return entry.conn, nil
	}

	// check again while holding write lock
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	if entry, ok := p.conns[address]; ok {
		return entry.conn, nil
	}

	conn, err := grpc.NewClient(address, p.dialOpts...)
	if err != nil {
		return nil, err
	}
	p.conns[address] = &pooledConn{conn: conn}
	return conn, nil
}

// Len returns the number of pooled connections.
func (p *ConnPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}

// Close evicts and closes the connection for address, if present.
func (p *ConnPool) Close(address string) error {
	p.mu.Lock()
	entry, ok := p.conns[address]
	if ok {
		delete(p.conns, address)
	}
	p.mu.Unlock()

	if !ok {
		return nil
	}
	return entry.conn.Close()
}

// CloseAll closes every pooled connection. The pool refuses new connections afterwards.
func (p *ConnPool) CloseAll() {
	p.mu.Lock()
	conns := p.conns
	p.conns = make(map[string]*pooledConn)
	p.closed = true
	p.mu.Unlock()

	for _, entry := range conns {
		_ = entry.conn.Close()
	}
}
