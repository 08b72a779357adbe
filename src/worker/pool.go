package worker

import (
	"errors"
	"log"
	"runtime"
	"sync"
	"time"
)

var (
	ErrBusy   = errors.New("worker: queue full")
	ErrClosed = errors.New("worker: pool closed")
)

// Pool is a fixed set of goroutines fed by a small bounded queue. Submit never
// blocks; a full queue is reported as ErrBusy (strict back-pressure).
type Pool struct {
	mu     sync.RWMutex
	jobs   chan func()
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts size workers. Size defaults to NumCPU when size<=0; queue
// defaults to one slot.
func NewPool(size, queue int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if queue <= 0 {
		queue = 1
	}
	p := &Pool{jobs: make(chan func(), queue)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
	return p
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(id, job)
	}
}

func (p *Pool) run(id int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in worker %d: %v", id, r)
		}
	}()
	job()
}

func (p *Pool) Submit(job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrBusy
	}
}

// Close stops accepting work and waits up to timeout for queued and running
// jobs to finish. It reports false if the wait timed out.
func (p *Pool) Close(timeout time.Duration) bool {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		log.Printf("worker: pool did not drain within %s", timeout)
		return false
	}
}
