package usecase

import "errors"

var (
	// ErrValidation indicates malformed caller input; no side effects occurred.
	ErrValidation = errors.New("validation failed")
	// ErrUsernameTaken indicates the requested username is already registered.
	ErrUsernameTaken = errors.New("account with that username already exists")
	// ErrEmailTaken indicates the requested email is already registered.
	ErrEmailTaken = errors.New("account with that email already exists")
	// ErrInvalidCredentials is the single unauthorized outcome for a bad
	// password, an unknown identifier, a bad or expired token, and a token
	// naming a deleted account. Callers must not be able to tell these
	// apart.
	ErrInvalidCredentials = errors.New("could not validate credentials")
	// ErrStoreUnavailable indicates the account store rejected a write
	// after validation passed.
	ErrStoreUnavailable = errors.New("account store unavailable")
	// ErrDeletionFailed indicates the authenticated caller's account could
	// not be removed.
	ErrDeletionFailed = errors.New("account deletion failed")
)
