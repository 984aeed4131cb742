package bootstrap

import (
	"context"
	"database/sql"
	"time"

	"github.com/baechuer/signup-service/internal/logger"
)

type migrateFunc func(ctx context.Context, db *sql.DB) error

var (
	migrateRetryInterval = 5 * time.Second
	migrateRetryMax      = time.Minute
)

// applyMigrations runs the schema migrations once. An unreachable store
// must not keep the listener down, so a failure is logged and retried in
// the background with doubling delays until it succeeds or stop is called.
// /api/ready reports 503 meanwhile.
func applyMigrations(run migrateFunc, db *sql.DB) (stop func()) {
	err := migrateOnce(context.Background(), run, db)
	if err == nil {
		logger.Logger.Info().Msg("migrations applied")
		return func() {}
	}
	logger.Logger.Warn().Err(err).Dur("retry_in", migrateRetryInterval).Msg("migrations failed; serving without them")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		delay := migrateRetryInterval
		timer := time.NewTimer(delay)
		defer timer.Stop()

		for attempt := 2; ; attempt++ {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			err := migrateOnce(ctx, run, db)
			if err == nil {
				logger.Logger.Info().Int("attempt", attempt).Msg("migrations applied")
				return
			}
			if ctx.Err() != nil {
				return
			}

			delay = min(delay*2, migrateRetryMax)
			logger.Logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("migrations failed")
			timer.Reset(delay)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func migrateOnce(parent context.Context, run migrateFunc, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(parent, migrateTimeout)
	defer cancel()
	return run(ctx, db)
}
