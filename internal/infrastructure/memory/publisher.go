package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/signup-service/internal/domain"
)

// NoopPublisher stands in for RabbitMQ when RABBIT_URL is unset.
type NoopPublisher struct {
	log zerolog.Logger
}

func NewNoopPublisher(log zerolog.Logger) *NoopPublisher { return &NoopPublisher{log: log} }

func (p *NoopPublisher) PublishUserRegistered(ctx context.Context, evt domain.UserRegistered) error {
	p.log.Debug().
		Str("publisher", "noop").
		Str("user_id", evt.UserID).
		Msg("user.registered")
	return nil
}
