package service

import (
	"context"
	"log"
	"time"
)

// StartCompletionSweeper periodically moves bookings whose end time has
// passed to the completed state.  It blocks until ctx is cancelled; run it in
// its own goroutine.  One sweep failing only logs; the next tick retries.
func StartCompletionSweeper(ctx context.Context, bookings *BookingService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := bookings.CompleteDue(ctx, now.UTC())
			if err != nil {
				log.Printf("completion-sweeper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("completion-sweeper: completed %d booking(s)", n)
			}
		}
	}
}
