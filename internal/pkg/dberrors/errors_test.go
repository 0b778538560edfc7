package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := uniqueViolation("guardians_school_phone_key")

	assert.True(t, IsDuplicateConstraintError(err, "guardians_school_phone_key"))
	assert.False(t, IsDuplicateConstraintError(err, "students_school_admission_number_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("plain"), "guardians_school_phone_key"))
}

func TestIsDuplicateConstraintErrorSeesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("error upserting guardian: %w", uniqueViolation("guardians_school_phone_key"))
	assert.True(t, IsDuplicateConstraintError(err, "guardians_school_phone_key"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(uniqueViolation("schools_code_key")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	fk := fmt.Errorf("error creating student: %w", &pgconn.PgError{Code: "23503", ConstraintName: "students_school_id_fkey"})
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(uniqueViolation("schools_code_key")))
}
