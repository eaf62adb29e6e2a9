package jobs

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ExpiryPropertyRepository defines the interface for the listing expiry sweep
type ExpiryPropertyRepository interface {
	// ExpireActiveBefore moves active listings past their expiry to expired
	ExpireActiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExpiryWorker sweeps active listings whose visibility window has passed.
type ExpiryWorker struct {
	repo ExpiryPropertyRepository
	now  func() time.Time
}

// NewExpiryWorker creates a new ExpiryWorker instance
func NewExpiryWorker(repo ExpiryPropertyRepository) *ExpiryWorker {
	return &ExpiryWorker{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *ExpiryWorker) ProcessJobs(ctx context.Context) error {
	swept, err := w.repo.ExpireActiveBefore(ctx, w.now())
	if err != nil {
		return fmt.Errorf("failed to expire listings: %w", err)
	}

	if swept > 0 {
		log.Printf("Expired %d listings", swept)
	}
	return nil
}
