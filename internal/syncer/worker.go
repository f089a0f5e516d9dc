package syncer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"dcache-admin/internal/logger"
	"dcache-admin/internal/metrics"
	"dcache-admin/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type sourceProber interface {
	Probe(ctx context.Context, sourceURL string) (Checksum, error)
}

type transferSubmitter interface {
	Submit(ctx context.Context, req model.TransferRequest, sum Checksum) (string, error)
}

// Pool drains the transfer queue with a fixed number of workers. Each
// request is probed and, once the source is readable, submitted to FTS.
// Failures are logged and never stop a worker.
type Pool struct {
	queue     *Queue
	prober    sourceProber
	submitter transferSubmitter
	workers   int
	results   chan<- model.TransferResult
}

// NewPool creates a pool. results receives the outcome of every request
// and may be nil; when set it must be drained until Run returns.
func NewPool(queue *Queue, prober sourceProber, submitter transferSubmitter, workers int, results chan<- model.TransferResult) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		queue:     queue,
		prober:    prober,
		submitter: submitter,
		workers:   workers,
		results:   results,
	}
}

// Run blocks until the queue is closed and drained or ctx ends.
func (p *Pool) Run(ctx context.Context) error {
	var g errgroup.Group

	for id := range p.workers {
		g.Go(func() error {
			p.work(ctx, id)
			return nil
		})
	}

	logger.Log.Info("transfer workers started",
		zap.Int("workers", p.workers))

	err := g.Wait()

	logger.Log.Info("transfer workers stopped")
	return err
}

func (p *Pool) work(ctx context.Context, id int) {
	for {
		req, err := p.queue.Get(ctx)
		if err != nil {
			return
		}
		p.process(ctx, id, req)
	}
}

func (p *Pool) process(ctx context.Context, id int, req model.TransferRequest) {
	result := model.TransferResult{Request: req, Status: model.TransferFailed}

	defer func() {
		if r := recover(); r != nil {
			result.Status = model.TransferFailed
			result.Err = fmt.Errorf("worker panic: %v", r)
			logger.Log.Error("worker panic",
				zap.Int("worker", id),
				zap.String("transfer", req.ID),
				zap.String("src", req.SourceURL),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}

		p.queue.Done()
		p.emit(result)
	}()

	sum, err := p.prober.Probe(ctx, req.SourceURL)
	if err != nil {
		result.Err = err
		msg := "source probe failed"
		if errors.Is(err, ErrUnavailable) {
			result.Status = model.TransferDropped
			msg = "source not available, transfer dropped"
		}
		logger.Log.Error(msg,
			zap.Int("worker", id),
			zap.String("transfer", req.ID),
			zap.String("src", req.SourceURL),
			zap.Error(err))
		return
	}
	result.Checksum = sum.String()
	result.Size = sum.Size

	jobID, err := p.submitter.Submit(ctx, req, sum)
	if err != nil {
		result.Err = err
		logger.Log.Error("fts submission failed",
			zap.Int("worker", id),
			zap.String("transfer", req.ID),
			zap.String("src", req.SourceURL),
			zap.String("dst", req.DestinationURL),
			zap.Error(err))
		return
	}

	result.Status = model.TransferSubmitted
	result.JobID = jobID
	metrics.TransferLatency.Observe(time.Since(req.Enqueued).Seconds())

	logger.Log.Info("transfer submitted to fts",
		zap.String("transfer", req.ID),
		zap.String("src", req.SourceURL),
		zap.String("dst", req.DestinationURL),
		zap.String("fts", req.FTSEndpoint),
		zap.String("job", jobID))
}

func (p *Pool) emit(result model.TransferResult) {
	metrics.TransfersTotal.WithLabelValues(string(result.Status)).Inc()
	if p.results != nil {
		p.results <- result
	}
}
