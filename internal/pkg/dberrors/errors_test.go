package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "lecturers_email_key"})
	fk := &pgconn.PgError{Code: "23503"}
	notNull := &pgconn.PgError{Code: "23502"}

	assert.True(t, IsDuplicateConstraintError(unique, "lecturers_email_key"))
	assert.True(t, IsDuplicateConstraintError(unique, ""))
	assert.False(t, IsDuplicateConstraintError(unique, "other"))
	assert.False(t, IsDuplicateConstraintError(errors.New("plain"), ""))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(notNull))
	assert.True(t, IsNotNullViolation(notNull))

	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(fk))

	assert.True(t, IsInvalidText(&pgconn.PgError{Code: "22P02"}))
	assert.False(t, IsInvalidText(unique))
}
