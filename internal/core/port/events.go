package port

import (
	"context"

	"github.com/thriftr-app/thriftr/internal/core/domain"
)

// EventPublisher publishes account lifecycle events to the message bus.
// Publishing is best-effort: the flows that emit events treat failures as
// log-and-continue, never as request failures.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishAccountDeleted(ctx context.Context, event domain.AccountDeletedEvent) error
}
