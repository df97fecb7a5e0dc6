package webhooks

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/mintopia/planka-mcp-sub001/core"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 10 * time.Second
)

// Worker drains the webhook queue and feeds each message through the
// processor. Failed deliveries are redelivered on a fixed delay until the
// attempt budget runs out, then dead-lettered.
type Worker struct {
	Dequeuer    core.JobDequeuer
	Processor   *Processor
	Logger      core.Logger
	MaxAttempts int
	RetryDelay  time.Duration
}

func NewWorker(cfg core.Config, dequeuer core.JobDequeuer, processor *Processor, logger core.Logger) *Worker {
	maxAttempts := cfg.Processor.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	delay := cfg.Processor.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &Worker{
		Dequeuer:    dequeuer,
		Processor:   processor,
		Logger:      glog.Ensure(logger),
		MaxAttempts: maxAttempts,
		RetryDelay:  delay,
	}
}

// Run consumes deliveries until the context is canceled or the queue is
// closed. Each delivery is handled to completion before the next dequeue.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.Dequeuer == nil || w.Processor == nil {
		return ingestInternal("webhooks: worker requires a dequeuer and a processor", nil)
	}
	for {
		delivery, err := w.Dequeuer.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if delivery == nil {
			return nil
		}
		w.handle(ctx, delivery)
	}
}

func (w *Worker) handle(ctx context.Context, delivery core.JobDelivery) {
	msg := delivery.Message()
	if err := w.Processor.ProcessJob(ctx, msg); err != nil {
		w.retryOrDrop(ctx, delivery, err)
		return
	}
	if err := delivery.Ack(ctx); err != nil {
		w.logError(ctx, "delivery ack failed", map[string]any{
			"job_id": jobID(msg),
			"error":  err.Error(),
		})
	}
}

func (w *Worker) retryOrDrop(ctx context.Context, delivery core.JobDelivery, cause error) {
	msg := delivery.Message()
	attempt := delivery.Attempt()
	if attempt < w.MaxAttempts {
		w.logError(ctx, "webhook processing failed, retrying", map[string]any{
			"job_id":  jobID(msg),
			"attempt": attempt,
			"error":   cause.Error(),
		})
		if err := delivery.Nack(ctx, core.JobNackOptions{
			Delay:   w.RetryDelay,
			Requeue: true,
			Reason:  cause.Error(),
		}); err != nil {
			w.logError(ctx, "delivery nack failed", map[string]any{
				"job_id": jobID(msg),
				"error":  err.Error(),
			})
		}
		return
	}
	w.logError(ctx, "webhook processing failed, attempts exhausted", map[string]any{
		"job_id":  jobID(msg),
		"attempt": attempt,
		"error":   cause.Error(),
	})
	if err := delivery.Nack(ctx, core.JobNackOptions{
		Requeue:    false,
		DeadLetter: true,
		Reason:     cause.Error(),
	}); err != nil {
		w.logError(ctx, "delivery dead-letter failed", map[string]any{
			"job_id": jobID(msg),
			"error":  err.Error(),
		})
	}
}

func (w *Worker) logError(ctx context.Context, message string, fields map[string]any) {
	if w == nil || w.Logger == nil {
		return
	}
	logger := w.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Error(message, flatten(fields)...)
}

func jobID(msg *core.JobExecutionMessage) string {
	if msg == nil {
		return ""
	}
	return msg.JobID
}
