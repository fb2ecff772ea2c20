package main

import (
	"context"
	"fmt"
	"time"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/quiz"
)

// sweepExpiredQuizzes periodically closes quizzes whose end time has passed,
// so submissions against them are rejected even if no student triggers a read.
func sweepExpiredQuizzes(ctx context.Context, svc quiz.Service, logger core.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			closed, err := svc.CloseExpired(ctx)
			if err != nil {
				logger.Error(fmt.Sprintf("closing expired quizzes: %v", err), err)
				continue
			}
			if closed > 0 {
				logger.Info(fmt.Sprintf("closed %d expired quizzes", closed))
			}
		}
	}
}
