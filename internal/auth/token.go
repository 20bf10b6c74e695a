package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 7 * 24 * time.Hour

var ErrBadToken = errors.New("invalid or expired token")

type TokenService struct{ hmac []byte }

func NewTokenService(secret string) *TokenService { return &TokenService{hmac: []byte(secret)} }

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // "user" or "admin"
	jwt.RegisteredClaims
}

func (t *TokenService) Issue(sub, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "quizhub",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.hmac)
}

func (t *TokenService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tk *jwt.Token) (interface{}, error) {
		return t.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadToken
	}
	c, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrBadToken
	}
	return c, nil
}
