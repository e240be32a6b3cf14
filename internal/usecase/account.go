package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thriftr-app/thriftr/internal/core/domain"
	"github.com/thriftr-app/thriftr/internal/core/port"
	"github.com/thriftr-app/thriftr/internal/infra/security"
	"github.com/thriftr-app/thriftr/internal/repository"
)

// AccountService resolves session tokens back to accounts and handles
// account removal.
type AccountService struct {
	accounts port.AccountRepository
	codec    *security.TokenCodec
	events   port.EventPublisher
	logger   *zap.Logger
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(accounts port.AccountRepository, codec *security.TokenCodec, events port.EventPublisher, log *zap.Logger) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{accounts: accounts, codec: codec, events: events, logger: log}
}

// CurrentAccount validates the presented token and resolves it to the
// account it names. A token for an account that no longer exists fails
// exactly like an invalid token: deletion revokes outstanding tokens
// without a revocation store.
func (s *AccountService) CurrentAccount(ctx context.Context, token string) (domain.Account, error) {
	accountID, err := s.codec.Verify(token)
	if err != nil {
		return domain.Account{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("valid token names a missing account",
				zap.Int64("account_id", accountID),
			)
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	return account.Sanitized(), nil
}

// DeleteAccount removes the already-authenticated caller's account. The
// caller was resolved via CurrentAccount, so a miss here means the row
// vanished between validation and deletion.
func (s *AccountService) DeleteAccount(ctx context.Context, account domain.Account) error {
	deleted, err := s.accounts.Delete(ctx, account.Username)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeletionFailed, err)
	}
	if !deleted {
		return ErrDeletionFailed
	}

	s.publishDeleted(ctx, account)

	return nil
}

func (s *AccountService) publishDeleted(ctx context.Context, account domain.Account) {
	if s.events == nil {
		return
	}

	event := domain.AccountDeletedEvent{
		AccountID: account.ID,
		Username:  account.Username,
		DeletedAt: time.Now().UTC(),
	}

	if err := s.events.PublishAccountDeleted(ctx, event); err != nil {
		s.logger.Warn("publish account deleted event", zap.Error(err))
	}
}
