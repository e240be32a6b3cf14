package port

import (
	"context"

	"github.com/thriftr-app/thriftr/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts. Every
// implementation is scoped to a single storage partition for the lifetime
// of the process.
type AccountRepository interface {
	// GetByIdentifier resolves an account by username or email. The
	// uniqueness invariant guarantees at most one match.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	Exists(ctx context.Context, identifier string) (bool, error)
	Insert(ctx context.Context, username, email, passwordHash string) (*domain.Account, error)
	// Delete removes the account matching the identifier and reports
	// whether a row was actually removed.
	Delete(ctx context.Context, identifier string) (bool, error)
}
