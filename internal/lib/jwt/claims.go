// Package jwt реализует выпуск и проверку access и refresh JWT токенов.
package jwt

import (
	"time"
)

// Типы токенов.
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	GenerateToken(userID int64, email, tokenType string) (string, error)
	ParseToken(tokenStr, tokenType string) (*CustomClaims, error)
}

// MakerImpl реализует Maker на HMAC-SHA256 с отдельными TTL для access и refresh.
type MakerImpl struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и времени жизни токенов.
func NewJWTMaker(secretKey string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}
