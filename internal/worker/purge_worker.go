package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Purger deletes links by short code.
type Purger interface {
	Delete(ctx context.Context, codes []string) error
}

// PurgeWorkerPool removes expired links in the background. Codes are
// collected into batches that are flushed when full or after BatchTimeout.
type PurgeWorkerPool struct {
	purger       Purger
	requestChan  chan string
	batchSize    int
	batchTimeout time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

type Config struct {
	WorkerCount  int
	BufferSize   int
	BatchSize    int
	BatchTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WorkerCount:  2,
		BufferSize:   100,
		BatchSize:    20,
		BatchTimeout: 5 * time.Second,
	}
}

func NewPurgeWorkerPool(purger Purger, config Config) *PurgeWorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	return &PurgeWorkerPool{
		purger:       purger,
		requestChan:  make(chan string, config.BufferSize),
		batchSize:    config.BatchSize,
		batchTimeout: config.BatchTimeout,
		workerCount:  config.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (p *PurgeWorkerPool) Start() {
	log.Info().
		Int("workers", p.workerCount).
		Int("batchSize", p.batchSize).
		Dur("batchTimeout", p.batchTimeout).
		Msg("Starting purge worker pool")

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *PurgeWorkerPool) worker(id int) {
	defer p.wg.Done()

	batch := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) == 0 {
			return
		}

		codes := make([]string, 0, len(batch))
		for code := range batch {
			codes = append(codes, code)
		}
		clear(batch)

		// The pool context may already be cancelled during shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.purger.Delete(ctx, codes); err != nil {
			log.Error().
				Err(err).
				Int("workerID", id).
				Int("count", len(codes)).
				Msg("Failed to purge expired links")
			return
		}

		log.Debug().
			Int("workerID", id).
			Int("count", len(codes)).
			Msg("Purged expired links")
	}

	stopTimer := func() {
		if timer != nil && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timerC = nil
	}

	startTimer := func() {
		stopTimer()
		if timer == nil {
			timer = time.NewTimer(p.batchTimeout)
		} else {
			timer.Reset(p.batchTimeout)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-p.ctx.Done():
		drain:
			for {
				select {
				case code := <-p.requestChan:
					batch[code] = struct{}{}
				default:
					break drain
				}
			}
			flush()
			stopTimer()
			return

		case code := <-p.requestChan:
			wasEmpty := len(batch) == 0
			batch[code] = struct{}{}

			if len(batch) >= p.batchSize {
				flush()
				stopTimer()
			} else if wasEmpty {
				startTimer()
			}

		case <-timerC:
			timerC = nil
			flush()
		}
	}
}

// Submit queues code for deletion. It never blocks: when the queue is full
// the code is dropped and will be queued again on its next lookup.
func (p *PurgeWorkerPool) Submit(code string) bool {
	select {
	case <-p.ctx.Done():
		return false
	default:
	}

	select {
	case p.requestChan <- code:
		return true
	default:
		log.Warn().Str("code", code).Msg("Purge queue is full, dropping request")
		return false
	}
}

// Shutdown drains the queue and waits for workers up to timeout.
func (p *PurgeWorkerPool) Shutdown(timeout time.Duration) error {
	var shutdownErr error

	p.shutdownOnce.Do(func() {
		log.Info().Msg("Shutting down purge worker pool")

		p.cancel()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Info().Msg("Purge worker pool shut down gracefully")
		case <-time.After(timeout):
			log.Warn().Msg("Purge worker pool shutdown timeout")
			shutdownErr = context.DeadlineExceeded
		}
	})

	return shutdownErr
}

func (p *PurgeWorkerPool) Stats() PoolStats {
	return PoolStats{
		QueueSize:   len(p.requestChan),
		QueueCap:    cap(p.requestChan),
		WorkerCount: p.workerCount,
	}
}

type PoolStats struct {
	QueueSize   int
	QueueCap    int
	WorkerCount int
}
