package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jerrors "github.com/mycelian/mycelian-journal/internal/errors"
)

type noopJob struct{}

func (noopJob) Run(context.Context) error { return nil }

// blockShard occupies the worker for key until the returned func is called.
func blockShard(t *testing.T, p *ShardExecutor, key string) func() {
	t.Helper()
	release := make(chan struct{})
	started := make(chan struct{})
	if err := p.Submit(context.Background(), key, JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	})); err != nil {
		t.Fatalf("submit blocking job: %v", err)
	}
	<-started
	return func() { close(release) }
}

func TestShardExecutor_QueueFull(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer p.Stop()

	release := blockShard(t, p, "same")
	defer release()

	_ = p.Submit(context.Background(), "same", noopJob{})
	err := p.Submit(context.Background(), "same", noopJob{})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestShardExecutor_FIFOOrdering(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 10})
	defer p.Stop()

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 5; i++ {
		v := i
		if err := p.Submit(context.Background(), "timeline-1", JobFunc(func(context.Context) error {
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			return nil
		})); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if err := p.Barrier(context.Background(), "timeline-1"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 5 {
		t.Fatalf("expected 5 jobs, got %v", order)
	}
	for i, v := range order {
		if i != v {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

func TestShardExecutor_ParallelDifferentKeys(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 10})
	defer p.Stop()

	keyA, keyB := "timeline-a", "timeline-b"
	for i := 0; p.shardFor(keyA) == p.shardFor(keyB); i++ {
		keyB += "x"
		if i > 100 {
			t.Fatal("failed to find keys mapping to different shards")
		}
	}

	start := make(chan struct{})
	done := make(chan struct{})
	_ = p.Submit(context.Background(), keyA, JobFunc(func(context.Context) error {
		<-start
		close(done)
		return nil
	}))
	_ = p.Submit(context.Background(), keyB, JobFunc(func(context.Context) error {
		close(start)
		<-done
		return nil
	}))

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("jobs blocked each other; expected parallelism")
	}
}

func TestShardExecutor_SerialExecutionSameKey(t *testing.T) {
	t.Parallel()
	const n = 100
	p := NewShardExecutor(Config{Shards: 4, QueueSize: n})
	defer p.Stop()

	var inFlight, overlap int32
	for i := 0; i < n; i++ {
		_ = p.Submit(context.Background(), "X", JobFunc(func(context.Context) error {
			if atomic.AddInt32(&inFlight, 1) > 1 {
				atomic.StoreInt32(&overlap, 1)
			}
			time.Sleep(50 * time.Microsecond)
			atomic.AddInt32(&inFlight, -1)
			return nil
		}))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Barrier(ctx, "X"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&overlap) == 1 {
		t.Fatal("detected overlapping execution for same key")
	}
}

func TestShardExecutor_SubmitAfterStop(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 2, QueueSize: 2})
	p.Stop()
	p.Stop() // idempotent

	if err := p.Submit(context.Background(), "Z", noopJob{}); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
	if err := p.Do(context.Background(), "Z", func(context.Context) error { return nil }); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed from Do, got %v", err)
	}
}

func TestShardExecutor_StopSubmitRaceFree(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 32})

	var wg sync.WaitGroup
	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Submit(context.Background(), "k", noopJob{})
		}()
	}
	go p.Stop()
	wg.Wait()
}

func TestShardExecutor_DoReturnsJobResult(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 2, MaxAttempts: 1})
	defer p.Stop()

	sentinel := errors.New("save failed")
	if err := p.Do(context.Background(), "t", func(context.Context) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if err := p.Do(context.Background(), "t", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

// Concurrent Do calls on one key apply in the order they were issued.
func TestShardExecutor_DoPreservesCallOrder(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 2, MaxAttempts: 1})
	defer p.Stop()

	release := blockShard(t, p, "t")

	var (
		mu      sync.Mutex
		applied []int
		wg      sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_ = p.Do(context.Background(), "t", func(context.Context) error {
				mu.Lock()
				applied = append(applied, v)
				mu.Unlock()
				return nil
			})
		}(i)
		// Let goroutine i enqueue before i+1 starts.
		time.Sleep(5 * time.Millisecond)
	}
	release()
	wg.Wait()

	for i, v := range applied {
		if i != v {
			t.Fatalf("expected call order, got %v", applied)
		}
	}
}

func TestShardExecutor_DoSkipsCancelledJob(t *testing.T) {
	t.Parallel()
	var handled int32
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 4, MaxAttempts: 1,
		ErrorHandler: func(error) { atomic.AddInt32(&handled, 1) }})
	defer p.Stop()

	release := blockShard(t, p, "t")

	ctx, cancel := context.WithCancel(context.Background())
	var ran int32
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Do(ctx, "t", func(context.Context) error {
			atomic.StoreInt32(&ran, 1)
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	release()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if atomic.LoadInt32(&ran) == 1 {
		t.Fatal("cancelled job must not run")
	}
	if atomic.LoadInt32(&handled) == 0 {
		t.Fatal("expected error handler for cancelled job")
	}
}

// Do waits for a running job even when its context is cancelled mid-run.
func TestShardExecutor_DoWaitsForRunningJob(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 1, MaxAttempts: 1})
	defer p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	var finished int32
	err := p.Do(ctx, "t", func(context.Context) error {
		cancel()
		time.Sleep(20 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if atomic.LoadInt32(&finished) != 1 {
		t.Fatal("Do returned before the job finished")
	}
}

func TestShardExecutor_PanicIsContained(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 1, MaxAttempts: 1})
	defer p.Stop()

	err := p.Do(context.Background(), "t", func(context.Context) error { panic("job panic") })
	if err == nil {
		t.Fatal("expected panic to surface as an error")
	}
	// Same shard keeps working.
	if err := p.Do(context.Background(), "t", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("worker did not survive panic: %v", err)
	}
}

func TestShardExecutor_RetriesRecoverableErrors(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 1, MaxAttempts: 3, BaseBackoff: 5 * time.Millisecond})
	defer p.Stop()

	var attempts int32
	err := p.Do(context.Background(), "t", func(context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return jerrors.NewNetworkError("create entry", errors.New("connection reset"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestShardExecutor_IrrecoverableFailsFast(t *testing.T) {
	t.Parallel()
	var handled int32
	p := NewShardExecutor(Config{Shards: 1, MaxAttempts: 5, BaseBackoff: 5 * time.Millisecond,
		ErrorHandler: func(error) { atomic.AddInt32(&handled, 1) }})
	defer p.Stop()

	var attempts int32
	err := p.Do(context.Background(), "t", func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return jerrors.NewHTTPError("create entry", 400, []byte(`{"message":"bad type"}`))
	})
	if !jerrors.IsIrrecoverable(err) {
		t.Fatalf("expected irrecoverable error, got %v", err)
	}
	if atomic.LoadInt32(&attempts) != 1 || atomic.LoadInt32(&handled) != 1 {
		t.Fatalf("expected one attempt and one handler call, got %d/%d", attempts, handled)
	}
}

func TestShardExecutor_ErrorHandlerPanicRecovered(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 1, MaxAttempts: 1, ErrorHandler: func(error) { panic("handler panic") }})
	defer p.Stop()

	_ = p.Do(context.Background(), "t", func(context.Context) error { return errors.New("boom") })
	if err := p.Do(context.Background(), "t", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("worker did not continue after handler panic: %v", err)
	}
}

func TestShardExecutor_StopDrainsQueuedJobs(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 8})
	release := blockShard(t, p, "t")

	var ran int32
	for i := 0; i < 3; i++ {
		_ = p.Submit(context.Background(), "t", JobFunc(func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	go func() { time.Sleep(10 * time.Millisecond); release() }()
	p.Stop()
	if got := atomic.LoadInt32(&ran); got != 3 {
		t.Fatalf("expected 3 drained jobs, got %d", got)
	}
}
