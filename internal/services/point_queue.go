package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-point-api/internal/interfaces"
	"github.com/onerilhan/go-point-api/internal/models"
)

var _ interfaces.PointDispatcher = (*PointQueue)(nil)

type pointOp int

const (
	opCharge pointOp = iota
	opUse
	opGetBalance
	opGetHistories
)

func (o pointOp) String() string {
	switch o {
	case opCharge:
		return "charge"
	case opUse:
		return "use"
	case opGetBalance:
		return "get_balance"
	case opGetHistories:
		return "get_histories"
	default:
		return "unknown"
	}
}

// pointJob queue'da işlenecek point job'ı
type pointJob struct {
	op         pointOp
	UserID     uint64
	Amount     int64
	ResultChan chan pointResult
}

// pointResult job sonucu
type pointResult struct {
	Point     models.UserPoint
	Histories []models.PointHistory
	Error     error
}

// PointQueue runs point service calls on a fixed pool of workers so the
// request path never waits on a user's lock itself.
//
// Jobs run with the queue's own context, not the caller's: a caller that gives
// up waiting does not cancel its job, and the job still records its history.
// The queue context is cancelled only when Shutdown runs out of time.
type PointQueue struct {
	jobChan    chan pointJob
	workers    int
	bufferSize int
	wg         sync.WaitGroup
	service    interfaces.PointServiceInterface

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool
}

// NewPointQueue yeni queue oluşturur
func NewPointQueue(workers int, service interfaces.PointServiceInterface, bufferSize int) *PointQueue {
	if workers < 1 {
		workers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &PointQueue{
		jobChan:    make(chan pointJob, bufferSize),
		workers:    workers,
		bufferSize: bufferSize,
		service:    service,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start worker'ları başlatır
func (q *PointQueue) Start() {
	log.Info().
		Int("workers", q.workers).
		Int("buffer_size", q.bufferSize).
		Msg("Point queue started")

	for i := 1; i <= q.workers; i++ {
		q.wg.Add(1)
		go q.worker(fmt.Sprintf("point-worker-%d", i))
	}
}

// Stop drains queued jobs and waits for the workers.
func (q *PointQueue) Stop() {
	q.close()
	q.wg.Wait()
	q.cancel()
	log.Info().Msg("Point queue stopped")
}

// Shutdown is Stop with a deadline. When ctx expires first, workers still
// waiting for a user lock are interrupted and their attempts fail with
// ErrInterrupted.
func (q *PointQueue) Shutdown(ctx context.Context) error {
	q.close()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		log.Info().Msg("Point queue stopped")
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		log.Warn().Err(ctx.Err()).Msg("Point queue interrupted during shutdown")
		return fmt.Errorf("point queue shutdown: %w", ctx.Err())
	}
}

func (q *PointQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.stopped {
		q.stopped = true
		close(q.jobChan)
	}
}

func (q *PointQueue) worker(name string) {
	defer q.wg.Done()

	logger := log.With().Str("worker", name).Logger()
	logger.Debug().Msg("Worker started")

	for job := range q.jobChan {
		job.ResultChan <- q.process(logger, job)
		close(job.ResultChan)
	}

	logger.Debug().Msg("Worker stopped")
}

// process runs one job; a panic fails the job and keeps the worker alive.
func (q *PointQueue) process(logger zerolog.Logger, job pointJob) (result pointResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("recover", r).
				Stringer("op", job.op).
				Uint64("user_id", job.UserID).
				Msg("Worker recovered from panic")
			result = pointResult{Error: fmt.Errorf("%w: %v", ErrInternal, r)}
		}
	}()

	logger.Debug().
		Stringer("op", job.op).
		Uint64("user_id", job.UserID).
		Int64("amount", job.Amount).
		Msg("Processing point job")

	switch job.op {
	case opCharge:
		result.Point, result.Error = q.service.Charge(q.ctx, job.UserID, job.Amount)
	case opUse:
		result.Point, result.Error = q.service.Use(q.ctx, job.UserID, job.Amount)
	case opGetBalance:
		result.Point = q.service.GetBalance(job.UserID)
	case opGetHistories:
		result.Histories = q.service.GetHistories(job.UserID)
	default:
		result.Error = fmt.Errorf("unknown point op: %d", job.op)
	}

	return result
}

// addJob queue'ya yeni job ekler. It never blocks: a full or stopped queue
// answers on the returned channel right away.
func (q *PointQueue) addJob(op pointOp, userID uint64, amount int64) <-chan pointResult {
	resultChan := make(chan pointResult, 1)

	job := pointJob{
		op:         op,
		UserID:     userID,
		Amount:     amount,
		ResultChan: resultChan,
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		resultChan <- pointResult{Error: ErrQueueStopped}
		close(resultChan)
		return resultChan
	}

	select {
	case q.jobChan <- job:
	default:
		resultChan <- pointResult{Error: ErrQueueFull}
		close(resultChan)
	}

	return resultChan
}

// await waits for the job result or for ctx. Giving up does not cancel the job.
func (q *PointQueue) await(ctx context.Context, op pointOp, userID uint64, amount int64) (pointResult, error) {
	select {
	case result := <-q.addJob(op, userID, amount):
		return result, result.Error
	case <-ctx.Done():
		return pointResult{}, fmt.Errorf("await %s for user %d: %w", op, userID, ctx.Err())
	}
}

func (q *PointQueue) Charge(ctx context.Context, userID uint64, amount int64) (models.UserPoint, error) {
	result, err := q.await(ctx, opCharge, userID, amount)
	return result.Point, err
}

func (q *PointQueue) Use(ctx context.Context, userID uint64, amount int64) (models.UserPoint, error) {
	result, err := q.await(ctx, opUse, userID, amount)
	return result.Point, err
}

func (q *PointQueue) GetBalance(ctx context.Context, userID uint64) (models.UserPoint, error) {
	result, err := q.await(ctx, opGetBalance, userID, 0)
	return result.Point, err
}

func (q *PointQueue) GetHistories(ctx context.Context, userID uint64) ([]models.PointHistory, error) {
	result, err := q.await(ctx, opGetHistories, userID, 0)
	return result.Histories, err
}
