package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bizbooks/internal/core/apperror"
)

// CheckOwner refuses rows that belong to another tenant.
func CheckOwner(entity string, id, ownerID, userID int64) error {
	if ownerID != userID {
		return apperror.NewAccessDenied(fmt.Sprintf("%s %d belongs to another account", entity, id))
	}
	return nil
}

// MissError explains why a statement scoped by (id, user_id) touched no row:
// NOT_FOUND when the row is absent or filtered out, ACCESS_DENIED when another
// tenant owns it.
func MissError(ctx context.Context, q Querier, table, entity string, id, userID int64) error {
	var owner int64
	err := q.QueryRow(ctx, "SELECT user_id FROM "+pgx.Identifier{table}.Sanitize()+" WHERE id = $1", id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound(entity, id)
	}
	if err != nil {
		return fmt.Errorf("resolve %s owner: %w", entity, err)
	}
	if err := CheckOwner(entity, id, owner, userID); err != nil {
		return err
	}
	return apperror.NewNotFound(entity, id)
}
