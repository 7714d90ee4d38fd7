// internal/blockchain/solbc/rpc/node.go
package rpc

import (
	"sync"
	"sync/atomic"
	"time"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// NodeClient представляет отдельный RPC узел
type NodeClient struct {
	Client *solanarpc.Client
	URL    string
	active atomic.Bool
	// момент вывода из ротации, unix nano
	deactivatedAt atomic.Int64
	metrics       metrics
}

// metrics содержит метрики производительности RPC узла
type metrics struct {
	successCount atomic.Uint64
	errorCount   atomic.Uint64
	latency      time.Duration
	mutex        sync.Mutex
}

// NewNodeClient создает новый экземпляр NodeClient
func NewNodeClient(url string) *NodeClient {
	node := &NodeClient{
		Client: solanarpc.New(url),
		URL:    url,
	}
	node.active.Store(true)
	return node
}

// GetMetrics возвращает текущие метрики узла
func (c *NodeClient) GetMetrics() (successCount uint64, errorCount uint64, avgLatency time.Duration) {
	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	return c.metrics.successCount.Load(), c.metrics.errorCount.Load(), c.metrics.latency
}

// SetActive устанавливает статус активности узла
func (c *NodeClient) SetActive(state bool) {
	if state {
		c.active.Store(true)
		return
	}
	c.deactivate(time.Now())
}

func (c *NodeClient) deactivate(at time.Time) {
	c.deactivatedAt.Store(at.UnixNano())
	c.active.Store(false)
}

// inactiveFor returns how long the node has been out of rotation at now.
func (c *NodeClient) inactiveFor(now time.Time) time.Duration {
	if c.IsActive() {
		return 0
	}
	return now.Sub(time.Unix(0, c.deactivatedAt.Load()))
}

// IsActive возвращает текущий статус активности узла
func (c *NodeClient) IsActive() bool {
	return c.active.Load()
}

// UpdateMetrics обновляет метрики узла
func (c *NodeClient) UpdateMetrics(success bool, latency time.Duration) {
	if success {
		c.metrics.successCount.Add(1)
	} else {
		c.metrics.errorCount.Add(1)
	}

	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()
	if c.metrics.latency == 0 {
		c.metrics.latency = latency
		return
	}
	c.metrics.latency = (c.metrics.latency + latency) / 2 // скользящее среднее
}
