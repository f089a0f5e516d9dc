package syncer

import (
	"context"
	"errors"
	"sync"

	"dcache-admin/internal/metrics"
	"dcache-admin/internal/model"
)

var ErrQueueClosed = errors.New("transfer queue closed")

// Queue is an unbounded FIFO of transfer requests shared by the event
// consumer and the workers. Put never blocks; Get blocks until an item is
// available, the context ends or the queue is closed and empty.
type Queue struct {
	mu         sync.Mutex
	items      []model.TransferRequest
	unfinished int
	closed     bool
	wake       chan struct{}
	idle       *sync.Cond
}

func NewQueue() *Queue {
	q := &Queue{wake: make(chan struct{}, 1)}
	q.idle = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) Put(req model.TransferRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.items = append(q.items, req)
	q.unfinished++
	metrics.QueueDepth.Set(float64(len(q.items)))
	q.signal()

	return nil
}

// Get removes the oldest request. Every request obtained must be
// acknowledged with Done.
func (q *Queue) Get(ctx context.Context) (model.TransferRequest, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			req := q.items[0]
			q.items[0] = model.TransferRequest{}
			q.items = q.items[1:]
			metrics.QueueDepth.Set(float64(len(q.items)))
			if len(q.items) > 0 {
				q.signal()
			}
			q.mu.Unlock()
			return req, nil
		}
		if q.closed {
			q.mu.Unlock()
			return model.TransferRequest{}, ErrQueueClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return model.TransferRequest{}, ctx.Err()
		case <-q.wake:
		}
	}
}

// Done marks one request obtained from Get as processed.
func (q *Queue) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= 0 {
		panic("syncer: Done called more times than Get")
	}
	q.unfinished--
	if q.unfinished == 0 {
		q.idle.Broadcast()
	}
}

// Wait blocks until every request put so far has been processed.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.unfinished > 0 {
		q.idle.Wait()
	}
}

// Close stops accepting requests. Requests already queued are still handed
// out; once drained, Get returns ErrQueueClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.wake)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// signal wakes one waiting consumer. Callers hold q.mu.
func (q *Queue) signal() {
	if q.closed {
		return
	}
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
