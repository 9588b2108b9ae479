package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"deadlock", fmt.Errorf("confirm: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}), true},
		{"exclusion violation", &pgconn.PgError{Code: pgerrcode.ExclusionViolation}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestConstraintViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:           pgerrcode.ExclusionViolation,
		ConstraintName: "bookings_bus_no_overlap",
	})

	name, ok := ConstraintViolation(err, pgerrcode.ExclusionViolation)
	assert.True(t, ok)
	assert.Equal(t, "bookings_bus_no_overlap", name)

	_, ok = ConstraintViolation(err, pgerrcode.UniqueViolation)
	assert.False(t, ok)
	assert.False(t, IsUniqueViolation(err))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
}

func TestInTx(t *testing.T) {
	assert.False(t, InTx(context.Background()))
}
