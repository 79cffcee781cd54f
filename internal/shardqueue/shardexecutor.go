// Package shardqueue runs timeline writes on a small set of worker goroutines.
// Jobs sharing a key (a timeline id) run one at a time in submission order;
// jobs with different keys may run in parallel.
//
// Callers that need "submitted before" to mean "applied before" must not call
// Submit concurrently for the same key. Do serialises callers itself.
package shardqueue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/mycelian/mycelian-journal/internal/errors"
	"github.com/mycelian/mycelian-journal/internal/job"
)

type queuedJob struct {
	ctx context.Context
	job Job
}

// ShardExecutor executes Jobs on worker goroutines partitioned by a stable hash
// of the key.
type ShardExecutor struct {
	cfg    Config
	log    zerolog.Logger
	queues []chan queuedJob // len == cfg.Shards

	// submitMu serialises Do callers per shard so enqueue order matches call order.
	submitMu []sync.Mutex

	done   chan struct{} // closed in Stop()
	closed uint32        // 0 running, 1 closed

	wg sync.WaitGroup
}

// NewShardExecutor constructs the executor and starts its shard workers.
func NewShardExecutor(cfg Config) *ShardExecutor {
	cfg = cfg.withDefaults()
	p := &ShardExecutor{
		cfg:      cfg,
		log:      cfg.Logger.With().Str("component", "shardqueue").Logger(),
		queues:   make([]chan queuedJob, cfg.Shards),
		submitMu: make([]sync.Mutex, cfg.Shards),
		done:     make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		p.queues[i] = ch
		p.wg.Add(1)
		go p.runWorker(i, ch)
	}
	return p
}

// Submit enqueues job for the shard derived from key.
//
//   - Returns nil on success.
//   - Returns ErrExecutorClosed if the executor is stopped.
//   - Returns *QueueFullError if the shard is still full after EnqueueTimeout.
//   - Returns ctx.Err() if ctx is cancelled first.
func (p *ShardExecutor) Submit(ctx context.Context, key string, j Job) error {
	if atomic.LoadUint32(&p.closed) == 1 {
		return ErrExecutorClosed
	}
	select {
	case <-p.done:
		return ErrExecutorClosed
	default:
	}

	shard := p.shardFor(key)
	ch := p.queues[shard]

	timer := time.NewTimer(p.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, job: j}:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-p.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

// Do runs fn on the shard for key and waits for its result. Concurrent Do
// calls for the same key run in the order they acquired the shard.
//
// If ctx is cancelled while fn is queued, fn is skipped. If ctx is cancelled
// while fn is running, Do still waits for fn to return so that callers never
// observe a write that is applied after they gave up on it.
func (p *ShardExecutor) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	tj := job.Track(fn)
	shard := p.shardFor(key)

	p.submitMu[shard].Lock()
	err := p.Submit(ctx, key, tj)
	p.submitMu[shard].Unlock()
	if err != nil {
		return err
	}
	<-tj.Done()
	return tj.Err()
}

// Barrier enqueues a no-op job on the shard for key and waits until it runs,
// ensuring all previously submitted jobs for that key have completed.
func (p *ShardExecutor) Barrier(ctx context.Context, key string) error {
	tj := job.Track(func(context.Context) error { return nil })
	if err := p.Submit(ctx, key, tj); err != nil {
		return err
	}
	return tj.Wait(ctx)
}

// Stop signals every worker to drain its queue, waits for them to finish and
// returns. It is idempotent and safe for concurrent use.
func (p *ShardExecutor) Stop() {
	if !atomic.CompareAndSwapUint32(&p.closed, 0, 1) {
		return
	}
	p.log.Debug().Int("shards", p.cfg.Shards).Msg("stopping executor")
	close(p.done)
	p.wg.Wait()
	p.log.Debug().Msg("executor stopped, all queues drained")
}

// Close lets ShardExecutor satisfy io.Closer.
func (p *ShardExecutor) Close() error {
	p.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (p *ShardExecutor) runWorker(idx int, ch <-chan queuedJob) {
	defer p.wg.Done()
	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			p.complete(qj, p.execute(idx, qj))
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-p.done:
			drained := 0
			for {
				select {
				case qj := <-ch:
					err := p.runOnce(idx, qj)
					p.safeHandleError(err)
					p.complete(qj, err)
					drained++
				default:
					if drained > 0 {
						p.log.Debug().Int("shard", idx).Int("jobs", drained).Msg("drained remaining jobs")
					}
					queueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

// execute runs one job with retries and returns the final error. A job whose
// context is already cancelled is skipped.
func (p *ShardExecutor) execute(idx int, qj queuedJob) error {
	if qj.job == nil {
		return nil
	}
	if err := qj.ctx.Err(); err != nil {
		p.safeHandleError(err)
		return err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = p.cfg.MaxInterval
	exp.Reset()

	for attempt := 1; ; attempt++ {
		err := p.runOnce(idx, qj)
		if err == nil {
			return nil
		}
		if errors.IsIrrecoverable(err) || attempt >= p.cfg.MaxAttempts {
			p.safeHandleError(err)
			return err
		}
		retriesTotal.WithLabelValues(labelFor(idx)).Inc()
		p.log.Debug().Err(err).Int("shard", idx).Int("attempt", attempt).Msg("job failed, retrying")

		select {
		case <-time.After(exp.NextBackOff()):
		case <-p.done:
			return ErrExecutorClosed
		case <-qj.ctx.Done():
			p.safeHandleError(qj.ctx.Err())
			return qj.ctx.Err()
		}
	}
}

// runOnce runs the job a single time. A panicking job is reported as an error
// and the worker keeps going.
func (p *ShardExecutor) runOnce(idx int, qj queuedJob) (err error) {
	if qj.job == nil {
		return nil
	}
	start := time.Now()
	defer func() {
		runDuration.WithLabelValues(labelFor(idx)).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			p.log.Error().Int("shard", idx).Interface("panic", r).Msg("job panic")
			err = fmt.Errorf("shardqueue: job panic: %v", r)
		}
	}()
	return qj.job.Run(qj.ctx)
}

// complete hands the final outcome to jobs that track it.
func (p *ShardExecutor) complete(qj queuedJob, err error) {
	if c, ok := qj.job.(interface{ Complete(error) }); ok {
		c.Complete(err)
	}
}

func (p *ShardExecutor) safeHandleError(err error) {
	if err == nil || p.cfg.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("error handler panic")
		}
	}()
	p.cfg.ErrorHandler(err)
}

func (p *ShardExecutor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.cfg.Shards))
}
