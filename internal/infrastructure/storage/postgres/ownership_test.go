package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"bizbooks/internal/core/apperror"
)

func TestCheckOwner(t *testing.T) {
	assert.NoError(t, CheckOwner("product", 1, 5, 5))
	assert.True(t, apperror.HasCode(CheckOwner("product", 1, 5, 6), apperror.CodeAccessDenied))
}

func TestMapError(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "products_active_name_key", Detail: "Key exists"}
	err := MapError(dup)
	appErr, ok := apperror.AsAppError(err)
	if assert.True(t, ok) {
		assert.Equal(t, apperror.CodeDuplicateName, appErr.Code)
		assert.Equal(t, "product", appErr.Details["entity"])
		assert.ErrorIs(t, err, dup)
	}

	fk := &pgconn.PgError{Code: "23503", TableName: "material_purchases"}
	assert.True(t, apperror.HasCode(MapError(fk), apperror.CodeDependencyExists))

	check := &pgconn.PgError{Code: "23514", ConstraintName: "products_stock_check"}
	assert.True(t, apperror.HasCode(MapError(check), apperror.CodeInvalidInput))

	long := &pgconn.PgError{Code: "22001"}
	assert.True(t, apperror.HasCode(MapError(long), apperror.CodeInvalidInput))

	plain := errors.New("connection refused")
	assert.Equal(t, plain, MapError(plain))
}
