package webhooks

import (
	"context"
	"sync"
	"time"

	"github.com/mintopia/planka-mcp-sub001/core"
)

const DefaultQueueCapacity = 256

// InMemoryQueue is a single-process job queue backing ingestion when no
// external broker is configured. Nacked deliveries re-enter the queue after
// their delay with the attempt counter bumped; dead-lettered deliveries are
// retained for inspection.
type InMemoryQueue struct {
	mu         sync.Mutex
	ch         chan *queuedJob
	deadLetter []*core.JobExecutionMessage
	closed     bool
}

type queuedJob struct {
	msg     *core.JobExecutionMessage
	attempt int
}

func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &InMemoryQueue{ch: make(chan *queuedJob, capacity)}
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if q == nil {
		return ingestInternal("webhooks: queue is not configured", nil)
	}
	if msg == nil {
		return ingestBadInput("webhooks: job message is required", nil)
	}
	return q.push(ctx, &queuedJob{msg: msg, attempt: 1})
}

// Dequeue blocks until a delivery is available, the queue closes, or the
// context ends. A closed queue returns a nil delivery and nil error.
func (q *InMemoryQueue) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if q == nil {
		return nil, ingestInternal("webhooks: queue is not configured", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case job, ok := <-q.ch:
		if !ok {
			return nil, nil
		}
		return &queueDelivery{queue: q, job: job}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops intake. In-flight deliveries may still ack or dead-letter;
// requeues after close are dropped.
func (q *InMemoryQueue) Close() {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// DeadLetters returns messages that exhausted their retry budget.
func (q *InMemoryQueue) DeadLetters() []*core.JobExecutionMessage {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*core.JobExecutionMessage, len(q.deadLetter))
	copy(out, q.deadLetter)
	return out
}

func (q *InMemoryQueue) push(ctx context.Context, job *queuedJob) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// The send happens under the mutex so Close cannot slip its
	// close(q.ch) between the closed check and the send. The send is
	// non-blocking, so the lock is never held across a wait.
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ingestTransient("webhooks: queue is closed", nil)
	}
	select {
	case q.ch <- job:
		return nil
	default:
		return ingestTransient("webhooks: queue is full", map[string]any{
			"capacity": cap(q.ch),
		})
	}
}

func (q *InMemoryQueue) addDeadLetter(msg *core.JobExecutionMessage) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deadLetter = append(q.deadLetter, msg)
}

type queueDelivery struct {
	queue *InMemoryQueue
	job   *queuedJob
	once  sync.Once
}

func (d *queueDelivery) Message() *core.JobExecutionMessage {
	if d == nil || d.job == nil {
		return nil
	}
	return d.job.msg
}

func (d *queueDelivery) Attempt() int {
	if d == nil || d.job == nil {
		return 0
	}
	return d.job.attempt
}

func (d *queueDelivery) Ack(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.once.Do(func() {})
	return nil
}

func (d *queueDelivery) Nack(ctx context.Context, opts core.JobNackOptions) error {
	if d == nil || d.queue == nil || d.job == nil {
		return nil
	}
	var err error
	d.once.Do(func() {
		if opts.DeadLetter || !opts.Requeue {
			if opts.DeadLetter {
				d.queue.addDeadLetter(d.job.msg)
			}
			return
		}
		next := &queuedJob{msg: d.job.msg, attempt: d.job.attempt + 1}
		if opts.Delay > 0 {
			time.AfterFunc(opts.Delay, func() {
				_ = d.queue.push(context.Background(), next)
			})
			return
		}
		err = d.queue.push(ctx, next)
	})
	return err
}
