package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrPoolClosed is returned by Submit once Stop has been called.
var ErrPoolClosed = errors.New("worker pool closed")

type job struct {
	run  func()
	done chan struct{}
}

// Pool runs CPU-bound jobs (password hashing) on a fixed set of workers so
// that bursts of logins cannot occupy more than numWorkers goroutines.
type Pool struct {
	jobs   chan job
	log    zerolog.Logger
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a Pool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewPool(numWorkers int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	p := &Pool{
		jobs: make(chan job, channelBuffer),
		log:  log,
	}
	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(i)
	}
	return p
}

// Submit queues fn and waits for it to finish. It returns ctx.Err() when the
// context ends first; fn may still run later in that case.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	j := job{run: fn, done: make(chan struct{})}
	select {
	case p.jobs <- j:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}
	metrics.HashQueueDepth.Set(float64(len(p.jobs)))

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains queued jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		p.execute(id, j)
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	}
}

func (p *Pool) execute(id int, j job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Interface("panic", r).
				Str("worker_id", strconv.Itoa(id)).
				Msg("worker job panicked")
		}
	}()
	j.run()
}
