// Package worker runs prediction jobs against the prediction service and
// hands the outcomes back to their sessions.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/cardiocare/internal/domain/intake"
	"github.com/okian/cardiocare/internal/domain/model"
	"github.com/okian/cardiocare/pkg/logger"
	"github.com/okian/cardiocare/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Job is what workers read off the queue.
type Job = model.PredictionJob

// Resolver receives the outcome of a job. Implementations decide whether the
// outcome still applies to a live session.
type Resolver interface {
	Resolve(ctx context.Context, out model.PredictionOutcome)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes prediction jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	predictor intake.Predictor
	resolver  Resolver
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, predictor intake.Predictor, resolver Resolver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		predictor: predictor,
		resolver:  resolver,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown stops the worker and waits for its loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, j Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)

	start := time.Now()
	pred, err := w.predictor.Predict(ctx, j.Payload)
	latency := time.Since(start)
	metrics.RecordWorkerProcessingLatency(float64(latency.Milliseconds()))

	outcome := outcomeLabel(pred, err)
	if mErr := metrics.RecordPrediction(outcome, float64(latency.Milliseconds())); mErr != nil {
		w.logger.Debug(ctx, "unrecorded prediction outcome", logger.Error(mErr))
	}

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordError("worker", outcome)
		w.logger.Warn(ctx, "prediction failed",
			logger.String("session_id", j.SessionID),
			logger.Uint64("attempt", j.Attempt),
			logger.Error(err),
		)
	} else {
		w.logger.Debug(ctx, "prediction completed",
			logger.String("session_id", j.SessionID),
			logger.Uint64("attempt", j.Attempt),
			logger.Duration("latency", latency),
		)
	}

	w.resolver.Resolve(ctx, model.PredictionOutcome{
		SessionID:  j.SessionID,
		Attempt:    j.Attempt,
		Prediction: pred,
		Err:        err,
		Latency:    latency,
	})
}

func outcomeLabel(p intake.Prediction, err error) string {
	if err == nil {
		if p.Positive() {
			return metrics.OutcomePositive
		}
		return metrics.OutcomeNegative
	}
	switch intake.AsPredictionError(err).Kind {
	case intake.KindValidation:
		return metrics.OutcomeValidation
	case intake.KindService:
		return metrics.OutcomeService
	default:
		return metrics.OutcomeTransport
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. A non-positive count uses one worker
// per CPU.
func NewPool(workerCount int, queue Queue, predictor intake.Predictor, resolver Resolver) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		p.workers[i] = NewInMemoryWorker(queue, predictor, resolver, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers. ctx should live as long as the service, not a
// single request: in-flight predictions are never cancelled by callers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue so waiting jobs drain, then waits for every
// worker to exit or ctx to end.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	return nil
}
