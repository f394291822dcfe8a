package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateSecureToken creates a cryptographically secure random token.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

const confirmPurpose = "confirm"

type confirmationClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// NewConfirmationToken issues a signed, expiring token tied to one user,
// embedded in the emailed confirmation link.
func NewConfirmationToken(secret string, userID uint, ttl time.Duration) (string, error) {
	claims := confirmationClaims{
		Purpose: confirmPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyConfirmationToken reports whether token is a valid, unexpired
// confirmation token for the given user. Callers collapse all failure
// causes into one generic message, so no detail is returned here.
func VerifyConfirmationToken(secret, token string, userID uint) bool {
	var claims confirmationClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return false
	}
	if claims.Purpose != confirmPurpose {
		return false
	}
	return claims.Subject == strconv.FormatUint(uint64(userID), 10)
}

// EncodeUserID renders a user id as the URL-safe opaque segment used in
// confirmation links.
func EncodeUserID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUserID reverses EncodeUserID.
func DecodeUserID(encoded string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, errors.New("malformed user id")
	}
	return uint(id), nil
}
