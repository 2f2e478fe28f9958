package utils

import (
	"clubdesk/src/config"
	"clubdesk/src/types"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
)

const (
	guestCodeBytes = 10
	MaxCodeLength  = 64
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func GenerateJWT(id uint, name string, role types.Role) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.JWTTTL())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret())
}

func ParseJWT(raw string) (*types.Claims, error) {
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return config.JWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

func CheckPassword(password, hash string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false
	}
	return match
}

// GenerateGuestCode returns 80 random bits as 16 upper-case base32 characters.
func GenerateGuestCode() (string, error) {
	b := make([]byte, guestCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("error generating guest code: %w", err)
	}
	return codeEncoding.EncodeToString(b), nil
}

// NormalizeGuestCode trims scanner noise and upper-cases manual input. Issued
// codes are upper-case so this never maps two codes onto one.
func NormalizeGuestCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// TruncateUTF8 replaces invalid byte sequences and cuts value to at most limit
// bytes without splitting a rune.
func TruncateUTF8(value string, limit int) string {
	value = strings.ToValidUTF8(value, "\uFFFD")
	if len(value) <= limit {
		return value
	}
	n := limit
	for n > 0 && !utf8.RuneStart(value[n]) {
		n--
	}
	return value[:n]
}

func ParseISODate(value string) (time.Time, error) {
	d, err := time.Parse(config.DATE_FORMAT, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// MonthRange returns the first day of the month and the first day of the
// following one, both UTC midnight.
func MonthRange(year int, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, 0)
}

func YearRange(year int) (time.Time, time.Time) {
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(1, 0, 0)
}

func WithSuffix(name string) string {
	env := config.APIEnv()
	if env == "" || env == string(types.Production) {
		return name
	}
	return fmt.Sprintf("%s-%s", name, env)
}
