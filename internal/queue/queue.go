// Package queue runs best-effort asynchronous work, currently notification
// delivery fan-out. Jobs are persisted rows; workers poll, retry with
// backoff, and park exhausted jobs in a dead letter table.
package queue

import (
	"context"
	"time"

	"github.com/garnizeh/fairway/internal/models"
)

// Handler is the function that processes a background job
type Handler func(ctx context.Context, j *models.BackgroundJob) error

// BackoffDuration returns exponential backoff duration for attempt n
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	// simple exponential: base 2^attempt seconds, capped
	d := time.Duration(1<<uint(attempt)) * time.Second
	max := 5 * time.Minute
	if d > max {
		return max
	}
	return d
}
