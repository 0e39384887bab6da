package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"bizbooks/internal/core/apperror"
)

// SQLSTATE codes mapped to domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	numericOverflow     = "22003"
	stringTooLong       = "22001"
)

// constraintEntities names the entity behind each unique index.
var constraintEntities = map[string]string{
	"users_username_lower_key":           "user",
	"categories_active_name_key":         "category",
	"expense_categories_active_name_key": "expense category",
	"products_active_name_key":           "product",
	"raw_materials_user_name_key":        "material",
}

// MapError converts constraint violations into AppErrors and returns other
// errors unchanged.
func MapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		entity, ok := constraintEntities[pgErr.ConstraintName]
		if !ok {
			entity = pgErr.TableName
		}
		return apperror.NewDuplicateName(entity, pgErr.Detail).WithCause(err)
	case foreignKeyViolation:
		return apperror.NewDependencyExists(pgErr.TableName, pgErr.Detail).WithCause(err)
	case checkViolation:
		return apperror.NewInvalidInput("value violates constraint " + pgErr.ConstraintName).WithCause(err)
	case stringTooLong:
		return apperror.NewInvalidInput("value is too long").WithCause(err)
	case numericOverflow:
		return apperror.NewOverflow(pgErr.ColumnName, pgErr.Detail).WithCause(err)
	}
	return err
}
