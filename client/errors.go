package client

import (
	"errors"

	jerrors "github.com/mycelian/mycelian-journal/internal/errors"
	"github.com/mycelian/mycelian-journal/internal/shardqueue"
	"github.com/mycelian/mycelian-journal/internal/types"
)

// ErrBackPressure is returned when the client's write queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// ErrClosed is returned by Timeline writes after Client.Close.
var ErrClosed = errors.New("client closed")

// ErrRefreshSuperseded is returned by a Refresh whose response arrived after a
// newer Refresh (or ClearEntries) had started. Its result was discarded.
var ErrRefreshSuperseded = errors.New("refresh superseded by a newer request")

// Re-export shared SDK errors so callers compare against a single symbol.
var (
	ErrNotFound     = types.ErrNotFound
	ErrInvalidDraft = types.ErrInvalidDraft
)

// Error is the classified gateway error carried by every failed backend call.
type Error = jerrors.ClassifiedError

// StatusCode returns the HTTP status behind err, or 0 when the request never
// got a response.
func StatusCode(err error) int { return jerrors.StatusOf(err) }

// mapQueueError translates write queue errors into the client's vocabulary.
func mapQueueError(err error) error {
	switch {
	case errors.Is(err, shardqueue.ErrQueueFull):
		return ErrBackPressure
	case errors.Is(err, shardqueue.ErrExecutorClosed):
		return ErrClosed
	}
	return err
}
