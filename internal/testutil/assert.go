package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landerp/backend/internal/domain/shared"
)

// AssertErrorCode asserts that err carries a DomainError with the given code
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %T: %v", err, err)
	assert.Equal(t, code, domainErr.Code, domainErr.Message)
}

// AssertDecimal compares decimals by value, ignoring their exponent
func AssertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	expected := decimal.RequireFromString(want)
	assert.True(t, expected.Equal(got), "%s: want %s, got %s", field, expected.String(), got.String())
}
