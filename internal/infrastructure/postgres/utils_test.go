package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jortega/stockbook-api/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("otro error")))
	assert.False(t, isUniqueViolation(nil))
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, isSerializationFailure(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isSerializationFailure(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, isSerializationFailure(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})))
	assert.False(t, isSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isSerializationFailure(errors.New("otro error")))
}

func TestTranslateConflict(t *testing.T) {
	// Fallos de serialización se vuelven ErrConflict (reintentable)
	err := translateConflict(&pgconn.PgError{Code: "40001"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = translateConflict(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40P01"}))
	assert.ErrorIs(t, err, domain.ErrConflict)

	// El resto pasa intacto
	orig := errors.New("columna inexistente")
	assert.Equal(t, orig, translateConflict(orig))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	v := nullIfEmpty("abc")
	assert.NotNil(t, v)
	assert.Equal(t, "abc", *v)
}
