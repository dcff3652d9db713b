package repository

import (
	"errors"
	"testing"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "duplicate key error maps to ErrAlreadyExists",
			input:    gorm.ErrDuplicatedKey,
			expected: domain.ErrAlreadyExists,
		},
		{
			name:     "record not found error maps to ErrNotFound",
			input:    gorm.ErrRecordNotFound,
			expected: domain.ErrNotFound,
		},
		{
			name:     "wrapped duplicate key error maps correctly",
			input:    errors.Join(errors.New("outer error"), gorm.ErrDuplicatedKey),
			expected: domain.ErrAlreadyExists,
		},
		{
			name:     "untranslated sqlite unique violation",
			input:    errors.New("constraint failed: UNIQUE constraint failed: currency.symbol (2067)"),
			expected: domain.ErrAlreadyExists,
		},
		{
			name:     "untranslated postgres unique violation",
			input:    errors.New(`ERROR: duplicate key value violates unique constraint "idx_currency_symbol" (SQLSTATE 23505)`),
			expected: domain.ErrAlreadyExists,
		},
		{
			name:     "other errors map to ErrStorage",
			input:    errors.New("connection reset"),
			expected: domain.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := MapGormErrorToDomain(tt.input)
			require.Error(t, result)
			assert.ErrorIs(t, result, tt.expected)
		})
	}
}

func TestMapGormErrorToDomain_Nil(t *testing.T) {
	assert.NoError(t, MapGormErrorToDomain(nil))
	assert.NoError(t, WrapError(func() error { return nil }))
}

func TestMapGormErrorToDomain_KeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(func() error { return cause })
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, cause)
}

func TestWrapError_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic to propagate")
		}
	}()
	_ = WrapError(func() error {
		panic("test panic")
	})
}
