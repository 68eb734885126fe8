package services

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"movi/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password, base64-wrapped as stored
// in the users collection.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(hashed), nil
}

// CheckPassword reports whether password matches the stored base64-wrapped
// bcrypt hash. Undecodable hashes count as a mismatch, not an error.
func CheckPassword(password, hashedB64 string) bool {
	hashed, err := base64.StdEncoding.DecodeString(hashedB64)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(hashed, []byte(password)) == nil
}

// CreateToken issues an HS256 JWT with the user id as subject.
func CreateToken(userID string) (string, error) {
	secret, expSeconds := config.JWTConfig()
	exp, err := strconv.Atoi(expSeconds)
	if err != nil || exp <= 0 {
		exp = 3600
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(exp) * time.Second)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodeToken validates a token and returns the user id it was issued for.
func DecodeToken(tokenString string) (string, error) {
	secret, _ := config.JWTConfig()
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
