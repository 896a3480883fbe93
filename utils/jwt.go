package utils

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Development fallback, overridden by .env in any real deployment.
		secret = "OrderPortalDevSecret2024"
	}
	jwtSecret = []byte(secret)
}

type AdminClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateAdminToken issues a 24h console token for an admin user.
func GenerateAdminToken(adminID uint, username string) (string, error) {
	claims := &AdminClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "order-portal",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseAdminToken validates a console token and returns its claims.
func ParseAdminToken(tokenString string) (*AdminClaims, error) {
	if IsTokenRevoked(tokenString) {
		return nil, errors.New("token has been revoked")
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

var (
	revokedTokens = make(map[string]time.Time)
	revokedMutex  sync.RWMutex
)

// RevokeToken blacklists a token until its natural expiry window passes.
func RevokeToken(token string) {
	revokedMutex.Lock()
	defer revokedMutex.Unlock()
	revokedTokens[token] = time.Now().Add(24 * time.Hour)
}

func IsTokenRevoked(token string) bool {
	revokedMutex.RLock()
	defer revokedMutex.RUnlock()

	expiry, exists := revokedTokens[token]
	return exists && time.Now().Before(expiry)
}
