package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thriftr-app/thriftr/internal/core/domain"
	"github.com/thriftr-app/thriftr/internal/core/port"
	"github.com/thriftr-app/thriftr/internal/infra/security"
)

// RegistrationService handles new account onboarding.
type RegistrationService struct {
	accounts  port.AccountRepository
	validator *security.PasswordValidator
	events    port.EventPublisher
	logger    *zap.Logger
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(accounts port.AccountRepository, validator *security.PasswordValidator, events port.EventPublisher, log *zap.Logger) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{accounts: accounts, validator: validator, events: events, logger: log}
}

// RegisterAccount validates the input, enforces uniqueness, and persists
// the new account. The returned account carries the password hash and must
// be sanitized before leaving the core.
func (s *RegistrationService) RegisterAccount(ctx context.Context, username, email, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	usernameTaken, err := s.accounts.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username existence: %w", err)
	}
	emailTaken, err := s.accounts.Exists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email existence: %w", err)
	}

	// Username conflict wins when both collide.
	if usernameTaken {
		return nil, ErrUsernameTaken
	}
	if emailTaken {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// The existence pre-check is best-effort; the store's own uniqueness
	// constraint is the authority, so a rejected insert here means either
	// a lost race or an outage.
	account, err := s.accounts.Insert(ctx, username, email, passwordHash)
	if err != nil {
		s.logger.Warn("account insert rejected",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.publishRegistered(ctx, account)

	return account, nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, account *domain.Account) {
	if s.events == nil {
		return
	}

	event := domain.AccountRegisteredEvent{
		AccountID:    account.ID,
		Username:     account.Username,
		Email:        account.Email,
		RegisteredAt: time.Now().UTC(),
	}

	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish account registered event", zap.Error(err))
	}
}
