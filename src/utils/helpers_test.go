package utils

import (
	"clubdesk/src/types"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGuestCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z2-7]{16}$`)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		code, err := GenerateGuestCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestNormalizeGuestCode(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeGuestCode("  abc123\n"))
	assert.Equal(t, "", NormalizeGuestCode(" \t "))
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "ABC", TruncateUTF8("ABC", 128))

	cut := TruncateUTF8("A"+strings.Repeat("é", 100), 128)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, 127, len(cut))

	assert.Equal(t, "A\uFFFDB", TruncateUTF8("A\xffB", 128))
	assert.Equal(t, "", TruncateUTF8("é", 1))
}

func TestMonthRange(t *testing.T) {
	first, next := MonthRange(2024, 2)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), next)

	first, next = MonthRange(2024, 12)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, 5, d.Day())

	_, err = ParseISODate("05/03/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseISODate("2024-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong horse", hash))
	assert.False(t, CheckPassword("correct horse", "not-a-hash"))
}

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	token, err := GenerateJWT(42, "Door Staff", types.ROLE_SECURITY)
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, types.ROLE_SECURITY, claims.Role)

	t.Setenv("JWT_SECRET", "rotated")
	_, err = ParseJWT(token)
	assert.Error(t, err)
}
