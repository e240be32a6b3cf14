package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thriftr-app/thriftr/internal/core/domain"
	"github.com/thriftr-app/thriftr/internal/core/port"
	"github.com/thriftr-app/thriftr/internal/repository"
)

const pgUniqueViolation = "23505"

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
// Every query targets the table selected by the storage partition
// resolved at startup.
type AccountRepository struct {
	exec    pgExecutor
	table   string
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a partition-scoped account repository
// backed by any executor that satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor, partition domain.StoragePartition) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		table:   partition.UsersTable(),
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *AccountRepository) selectAccounts() squirrel.SelectBuilder {
	return r.builder.
		Select("id", "username", "email", "password_hash", "is_active").
		From(r.table)
}

func (r *AccountRepository) scanAccount(row pgx.Row, scope string) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan %s: %w", scope, err)
	}
	return &account, nil
}

// GetByID retrieves an account by its numeric identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	stmt, args, err := r.selectAccounts().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...), "account")
}

// GetByIdentifier retrieves an account by username or email. Uniqueness of
// both columns guarantees at most one match.
func (r *AccountRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	stmt, args, err := r.selectAccounts().
		Where(squirrel.Or{
			squirrel.Eq{"username": identifier},
			squirrel.Eq{"email": identifier},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account by identifier sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...), "account by identifier")
}

// Exists reports whether any account matches the identifier.
func (r *AccountRepository) Exists(ctx context.Context, identifier string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From(r.table).
		Where(squirrel.Or{
			squirrel.Eq{"username": identifier},
			squirrel.Eq{"email": identifier},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query account existence: %w", err)
	}

	return true, nil
}

// Insert persists a new account row and returns it with the assigned id.
// A uniqueness violation maps to repository.ErrDuplicate so the caller can
// distinguish a lost race from an outage.
func (r *AccountRepository) Insert(ctx context.Context, username, email, passwordHash string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Insert(r.table).
		Columns("username", "email", "password_hash", "is_active").
		Values(username, email, passwordHash, true).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert account sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return &domain.Account{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}, nil
}

// Delete removes the account matching the identifier and reports whether a
// row was actually removed.
func (r *AccountRepository) Delete(ctx context.Context, identifier string) (bool, error) {
	stmt, args, err := r.builder.
		Delete(r.table).
		Where(squirrel.Or{
			squirrel.Eq{"username": identifier},
			squirrel.Eq{"email": identifier},
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
