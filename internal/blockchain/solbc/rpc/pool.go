// internal/blockchain/solbc/rpc/pool.go
package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// PoolOptions настройки пула
type PoolOptions struct {
	// MaxRetries is the number of attempts per call. Zero means one attempt
	// per configured node.
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
	// ReactivateAfter возвращает выведенный узел в ротацию по истечении паузы
	ReactivateAfter time.Duration
	Observer        Observer // может быть nil
}

// Observer получает результат каждого запроса к узлу
type Observer interface {
	ObserveRPC(method, endpoint string, duration time.Duration, err error)
}

// DefaultPoolOptions возвращает настройки по умолчанию
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxRetries:      0,
		RetryDelay:      200 * time.Millisecond,
		RequestTimeout:  10 * time.Second,
		ReactivateAfter: 30 * time.Second,
	}
}

// Pool распределяет запросы по RPC узлам по кругу
type Pool struct {
	clients   []*NodeClient
	logger    *zap.Logger
	opts      PoolOptions
	currIndex int
	mutex     sync.Mutex
	now       func() time.Time
}

// NewPool создает новый пул клиентов для указанных URL
func NewPool(urls []string, logger *zap.Logger, opts ...PoolOptions) (*Pool, error) {
	if len(urls) == 0 {
		return nil, ErrNoRPCNodes
	}

	options := DefaultPoolOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.MaxRetries <= 0 {
		options.MaxRetries = len(urls)
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = DefaultPoolOptions().RequestTimeout
	}
	if options.ReactivateAfter <= 0 {
		options.ReactivateAfter = DefaultPoolOptions().ReactivateAfter
	}

	clients := make([]*NodeClient, len(urls))
	for i, url := range urls {
		clients[i] = NewNodeClient(url)
	}

	return &Pool{
		clients:   clients,
		logger:    logger.Named("rpc-pool"),
		opts:      options,
		currIndex: -1,
		now:       time.Now,
	}, nil
}

// Clients возвращает узлы пула
func (p *Pool) Clients() []*NodeClient {
	return p.clients
}

// GetNextClient возвращает следующий активный клиент из пула. Узлы,
// выведенные из ротации дольше ReactivateAfter, возвращаются в неё.
func (p *Pool) GetNextClient() *NodeClient {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.reactivateNodes()
	for range p.clients {
		p.currIndex = (p.currIndex + 1) % len(p.clients)
		if p.clients[p.currIndex].IsActive() {
			return p.clients[p.currIndex]
		}
	}
	return nil
}

func (p *Pool) reactivateNodes() {
	now := p.now()
	for _, node := range p.clients {
		if node.IsActive() {
			continue
		}
		if idle := node.inactiveFor(now); idle >= p.opts.ReactivateAfter {
			node.SetActive(true)
			p.logger.Info("Node returned to rotation",
				zap.String("node", RedactURL(node.URL)),
				zap.Duration("inactive", idle))
		}
	}
}

// HasActiveClients проверяет наличие активных клиентов в пуле
func (p *Pool) HasActiveClients() bool {
	for _, client := range p.clients {
		if client.IsActive() {
			return true
		}
	}
	return false
}

// Execute runs op against the pool, moving to the next node after each
// failure. Not-found and critical errors are not retried; critical errors
// also take the node out of rotation until ReactivateAfter has passed. The
// returned error is an *Error.
func (p *Pool) Execute(ctx context.Context, method string, op func(ctx context.Context, client *solanarpc.Client) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.opts.RetryDelay
	policy.MaxInterval = 5 * time.Second

	operation := func() (struct{}, error) {
		node := p.GetNextClient()
		if node == nil {
			return struct{}{}, backoff.Permanent(NewError(ErrNoActiveClients, "", method))
		}

		reqCtx, cancel := context.WithTimeout(ctx, p.opts.RequestTimeout)
		defer cancel()

		start := time.Now()
		err := op(reqCtx, node.Client)
		elapsed := time.Since(start)
		node.UpdateMetrics(err == nil, elapsed)
		if p.opts.Observer != nil {
			p.opts.Observer.ObserveRPC(method, node.URL, elapsed, err)
		}
		if err == nil {
			return struct{}{}, nil
		}

		wrapped := NewError(err, node.URL, method)
		switch {
		case IsCriticalError(err):
			node.deactivate(p.now())
			p.logger.Warn("Node marked as inactive due to critical error",
				zap.String("node", RedactURL(node.URL)),
				zap.Duration("reactivate_after", p.opts.ReactivateAfter),
				zap.Error(err))
		case IsRateLimited(err):
			p.logger.Warn("Node rate limited",
				zap.String("node", RedactURL(node.URL)),
				zap.String("method", method))
		}
		if IsPermanentError(err) {
			return struct{}{}, backoff.Permanent(wrapped)
		}
		return struct{}{}, wrapped
	}

	notify := func(err error, delay time.Duration) {
		p.logger.Debug("RPC request failed, trying next node",
			zap.String("method", method),
			zap.Error(err),
			zap.Duration("backoff", delay))
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(p.opts.MaxRetries)),
		backoff.WithNotify(notify))
	return err
}
