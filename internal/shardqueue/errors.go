package shardqueue

import (
	"errors"
	"fmt"
)

// ErrQueueFull reports transient back-pressure: the shard queue was full
// when Submit tried to enqueue a job.
var ErrQueueFull = errors.New("write queue full")

// ErrExecutorClosed reports that the executor has been stopped and accepts no
// further work.
var ErrExecutorClosed = errors.New("write queue closed")

// QueueFullError carries diagnostics while satisfying errors.Is(_, ErrQueueFull).
type QueueFullError struct {
	Shard    int
	Length   int // queue length at timeout
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("write queue shard %d full (len=%d cap=%d)", e.Shard, e.Length, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }
