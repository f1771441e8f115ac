package segmentation

import (
	"NutriVision/internal/entity"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	DefaultPoolSize = 2
	AcquireTimeout  = 5 * time.Second
)

// ErrNoSessionAvailable means every segmenter session stayed busy for the
// whole acquire window.
var ErrNoSessionAvailable = errors.New("timeout waiting for a segmenter session")

type ISegmenter interface {
	Segment(ctx context.Context, image []byte) (*entity.SegmentationResult, error)
	Stats() PoolStats
}

// Pool keeps a fixed set of segmenter sessions. Each session handles one
// request at a time; concurrent callers block in Acquire until a session
// frees up or the acquire window runs out.
type Pool struct {
	log            *logrus.Logger
	sessions       chan *Client
	size           int
	acquireTimeout time.Duration
	mu             sync.Mutex
	closed         bool
	metrics        *poolMetrics
}

type poolMetrics struct {
	mu              sync.RWMutex
	inUse           int
	totalAcquired   int64
	totalReleased   int64
	acquireFailures int64
	waitTime        time.Duration
}

// PoolStats is a point-in-time snapshot of pool usage.
type PoolStats struct {
	InUse           int
	TotalAcquired   int64
	TotalReleased   int64
	AcquireFailures int64
	WaitTime        time.Duration
}

func NewPool(log *logrus.Logger, size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	pool := &Pool{
		log:            log,
		sessions:       make(chan *Client, size),
		size:           size,
		acquireTimeout: AcquireTimeout,
		metrics:        &poolMetrics{},
	}

	for i := 0; i < size; i++ {
		pool.sessions <- NewClient(log)
	}

	return pool
}

func (p *Pool) Acquire(ctx context.Context) (*Client, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.New("segmenter pool is closed")
	}
	p.mu.Unlock()

	start := time.Now()
	defer func() {
		p.metrics.mu.Lock()
		p.metrics.waitTime += time.Since(start)
		p.metrics.mu.Unlock()
	}()

	select {
	case client := <-p.sessions:
		p.metrics.mu.Lock()
		p.metrics.inUse++
		p.metrics.totalAcquired++
		p.metrics.mu.Unlock()
		return client, nil
	case <-time.After(p.acquireTimeout):
		p.metrics.mu.Lock()
		p.metrics.acquireFailures++
		p.metrics.mu.Unlock()
		return nil, ErrNoSessionAvailable
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pool) Release(client *Client) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		client.Close()
		return
	}
	p.mu.Unlock()

	p.metrics.mu.Lock()
	p.metrics.inUse--
	p.metrics.totalReleased++
	p.metrics.mu.Unlock()

	p.sessions <- client
}

// Segment runs one image through an available segmenter session.
func (p *Pool) Segment(ctx context.Context, image []byte) (*entity.SegmentationResult, error) {
	client, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(client)

	return client.ProcessImage(image)
}

func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.sessions)

	for client := range p.sessions {
		client.Close()
	}
}

func (p *Pool) Stats() PoolStats {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()

	return PoolStats{
		InUse:           p.metrics.inUse,
		TotalAcquired:   p.metrics.totalAcquired,
		TotalReleased:   p.metrics.totalReleased,
		AcquireFailures: p.metrics.acquireFailures,
		WaitTime:        p.metrics.waitTime,
	}
}
