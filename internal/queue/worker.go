package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/garnizeh/fairway/internal/metrics"
	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

type WorkerPool struct {
	repo        repository.QueueRepo
	handlers    map[string]Handler
	logger      *slog.Logger
	collector   *metrics.Collector
	workerCount int
	stop        chan struct{}
	wg          sync.WaitGroup
}

// NewWorkerPool wires handlers by job type. A nil collector disables metrics.
func NewWorkerPool(repo repository.QueueRepo, handlers map[string]Handler, logger *slog.Logger, collector *metrics.Collector, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{repo: repo, handlers: handlers, logger: logger, collector: collector, workerCount: workerCount, stop: make(chan struct{})}
}

// Start launches the worker goroutines
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals workers to stop and waits for them
func (p *WorkerPool) Stop() {
	close(p.stop)
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			p.logger.Info("worker stopping", "id", id)
			return
		case <-ctx.Done():
			p.logger.Info("context canceled, worker exiting", "id", id)
			return
		default:
			job, err := p.repo.FetchNext(ctx)
			if err != nil {
				p.logger.Error("fetch job", "err", err)
				time.Sleep(1 * time.Second)
				continue
			}
			if job == nil {
				// nothing to do
				time.Sleep(500 * time.Millisecond)
				continue
			}
			h, ok := p.handlers[job.Type]
			if !ok {
				job.Status = "failed"
				job.LastError = "no handler"
				_ = p.repo.MoveToDeadLetter(ctx, job)
				p.recordDead()
				continue
			}
			err = h(ctx, job)
			if err == nil {
				job.Status = "done"
				_ = p.repo.UpdateBackgroundJob(ctx, job)
				p.recordCompleted()
				continue
			}
			// handler returned error
			p.recordFailed()
			job.Attempts++
			job.LastError = err.Error()
			if job.Attempts >= job.MaxAttempts {
				job.Status = "failed"
				if mvErr := p.repo.MoveToDeadLetter(ctx, job); mvErr != nil {
					p.logger.Error("move to dead letter", "err", mvErr)
				}
				p.recordDead()
				continue
			}
			// schedule retry with backoff
			backoff := BackoffDuration(job.Attempts)
			t := time.Now().Add(backoff)
			job.NextTryAt = &t
			job.Status = "retry"
			if upErr := p.repo.UpdateBackgroundJob(ctx, job); upErr != nil {
				p.logger.Error("update job for retry", "err", upErr)
			}
		}
	}
}

// Enqueue convenience helper that creates a job and persists it
func (p *WorkerPool) Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	j := &models.BackgroundJob{Type: typ, Payload: b, Priority: priority, MaxAttempts: maxAttempts, ScheduledAt: time.Now()}
	id, err := p.repo.Enqueue(ctx, j)
	if err == nil {
		p.recordEnqueue()
	}
	return id, err
}

func (p *WorkerPool) recordEnqueue() {
	if p.collector != nil {
		p.collector.RecordEnqueue()
	}
}

func (p *WorkerPool) recordCompleted() {
	if p.collector != nil {
		p.collector.RecordCompleted()
	}
}

func (p *WorkerPool) recordFailed() {
	if p.collector != nil {
		p.collector.RecordFailed()
	}
}

func (p *WorkerPool) recordDead() {
	if p.collector != nil {
		p.collector.RecordDead()
	}
}
