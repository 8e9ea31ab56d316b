package utils

import (
	"context"
	"runtime/debug"
	"time"

	"financial-news-ai/pkg/logger"
)

// GoSafe runs fn in a new goroutine, recovering and logging any panic to log.
func GoSafe(log *logger.Logger, fn func()) {
	if log == nil {
		log = logger.NewNop()
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Recovered from panic in goroutine",
					logger.Field("panic", r),
					logger.StringField("stack", string(debug.Stack())))
			}
		}()
		fn()
	}()
}

// SleepContext waits for d or until ctx is done. It returns ctx.Err() when interrupted.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
