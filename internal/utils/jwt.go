package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GetJwtSecretBytes resolves the HS256 secret used for session tokens.
// Resolution order: STRATA_JWT_SECRET -> dev default (unless STRATA_STRICT_JWT).
func GetJwtSecretBytes() ([]byte, error) {
	secret := strings.TrimSpace(os.Getenv("STRATA_JWT_SECRET"))
	if secret == "" {
		strict := strings.EqualFold(strings.TrimSpace(os.Getenv("STRATA_STRICT_JWT")), "1") ||
			strings.EqualFold(strings.TrimSpace(os.Getenv("STRATA_STRICT_JWT")), "true")
		if !strict {
			secret = "dev_jwt_secret_123"
		}
	}
	if secret == "" {
		return nil, fmt.Errorf("STRATA_JWT_SECRET environment variable not set")
	}
	return []byte(secret), nil
}

// GenerateSessionToken mints a short-lived bearer token bound to a verified
// controller URI. Clients that do not want to sign every request can exchange
// one signed request for a session token.
func GenerateSessionToken(controller string, ttl time.Duration) (string, error) {
	jwtSecret, err := GetJwtSecretBytes()
	if err != nil {
		return "", err
	}
	if ttl <= 0 || ttl > time.Hour {
		ttl = time.Hour
	}
	claims := jwt.MapClaims{
		"sub": controller,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseSessionToken validates a session token and returns the controller URI
// it is bound to.
func ParseSessionToken(tokenString string) (string, error) {
	jwtSecret, err := GetJwtSecretBytes()
	if err != nil {
		return "", err
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return sub, nil
}
