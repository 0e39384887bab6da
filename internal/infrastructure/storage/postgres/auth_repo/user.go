// Package auth_repo provides the PostgreSQL user repository.
package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/domain/auth"
	"bizbooks/internal/infrastructure/storage/postgres"
)

var _ auth.UserRepository = (*UserRepo)(nil)

const usersTable = "users"

var userColumns = postgres.ExtractDBColumns[auth.User]()

// ownedTables lists every table holding tenant rows, children first.
var ownedTables = []string{
	"material_purchases",
	"sales",
	"expenses",
	"products",
	"raw_materials",
	"categories",
	"expense_categories",
}

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txm     *postgres.TxManager
	batch   *postgres.BatchExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{
		txm:     txm,
		batch:   postgres.NewBatchExecutor(txm),
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *UserRepo) getOne(ctx context.Context, where squirrel.Sqlizer, ref any) (*auth.User, error) {
	query, args, err := r.builder.Select(userColumns...).From(usersTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", ref)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// Create inserts the user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	query, args, err := r.builder.Insert(usersTable).
		SetMap(postgres.StructToMap(user, "id", "created_at", "first_login_at")).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("insert user: %w", postgres.MapError(err))
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID int64) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID)
}

// FindByUsername matches case-insensitively.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Expr("lower(username) = lower(?)", username), username)
}

// List returns all users ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]auth.User, error) {
	query, args, err := r.builder.Select(userColumns...).From(usersTable).OrderBy("lower(username)").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	users := make([]auth.User, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ExistsUsername checks for a case-insensitive collision.
func (r *UserRepo) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1))`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func (r *UserRepo) update(ctx context.Context, userID int64, set map[string]any) error {
	query, args, err := r.builder.Update(usersTable).SetMap(set).Where(squirrel.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", postgres.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID)
	}
	return nil
}

func (r *UserRepo) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	return r.update(ctx, userID, map[string]any{"is_blocked": blocked})
}

func (r *UserRepo) SetPassword(ctx context.Context, userID int64, hash string, mustChange bool) error {
	return r.update(ctx, userID, map[string]any{"password_hash": hash, "must_change_password": mustChange})
}

func (r *UserRepo) SetSubscriptionEnd(ctx context.Context, userID int64, end *time.Time) error {
	return r.update(ctx, userID, map[string]any{"subscription_end_date": end})
}

func (r *UserRepo) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	return r.update(ctx, userID, map[string]any{"is_admin": isAdmin})
}

// RecordFirstLogin sets first_login_at only when it is still null.
func (r *UserRepo) RecordFirstLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE users SET first_login_at = $2 WHERE id = $1 AND first_login_at IS NULL`, userID, at)
	if err != nil {
		return fmt.Errorf("record first login: %w", err)
	}
	return nil
}

// Delete removes every owned row, then the user, in one round trip. It must
// run inside the caller's transaction.
func (r *UserRepo) Delete(ctx context.Context, userID int64) error {
	queries := make([]postgres.BatchQuery, 0, len(ownedTables)+1)
	for _, table := range ownedTables {
		queries = append(queries, postgres.BatchQuery{
			SQL:  fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", table),
			Args: []any{userID},
		})
	}
	queries = append(queries, postgres.BatchQuery{SQL: "DELETE FROM users WHERE id = $1", Args: []any{userID}})

	affected, err := r.batch.ExecuteBatch(ctx, queries)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected[len(affected)-1] == 0 {
		return apperror.NewNotFound("user", userID)
	}
	return nil
}
