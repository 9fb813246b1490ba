package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	listenRetryDelay    = 500 * time.Millisecond
	listenRetryMaxDelay = 30 * time.Second
)

// PGBridge carries change signals between service instances over Postgres
// LISTEN/NOTIFY. Publish sends pg_notify; Run forwards received payloads into
// the local broker.
type PGBridge struct {
	pool    *pgxpool.Pool
	channel string
	local   *Broker
	logger  zerolog.Logger
}

// NewPGBridge creates a bridge on the given notify channel
func NewPGBridge(pool *pgxpool.Pool, channel string, local *Broker, logger zerolog.Logger) *PGBridge {
	return &PGBridge{
		pool:    pool,
		channel: channel,
		local:   local,
		logger:  logger,
	}
}

// Publish notifies every listening instance, this one included
func (b *PGBridge) Publish(ctx context.Context, topics ...string) error {
	for _, topic := range topics {
		if _, err := b.pool.Exec(ctx, "SELECT pg_notify($1, $2)", b.channel, topic); err != nil {
			return fmt.Errorf("error publishing change for %s: %w", topic, err)
		}
	}
	return nil
}

// Run listens until ctx is cancelled, reconnecting with backoff when the
// listening connection drops.
func (b *PGBridge) Run(ctx context.Context) error {
	r := retry.New(
		retry.Attempts(0),
		retry.Delay(listenRetryDelay),
		retry.MaxDelay(listenRetryMaxDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			b.logger.Warn().Err(err).Uint("attempt", n+1).Str("channel", b.channel).Msg("Realtime listener reconnecting")
		}),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.Context(ctx),
	)

	err := r.Do(func() error {
		return b.listen(ctx)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (b *PGBridge) listen(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("error acquiring listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{b.channel}.Sanitize()); err != nil {
		return fmt.Errorf("error listening on %s: %w", b.channel, err)
	}
	b.logger.Info().Str("channel", b.channel).Msg("Realtime listener connected")

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("error waiting for notification: %w", err)
		}
		if err := b.local.Publish(ctx, notification.Payload); err != nil {
			return err
		}
	}
}
