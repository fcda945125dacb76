package infra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JWTCodec emite credenciais HS256 com o id da sessão e expiração absoluta
// (criação + TTL). A verificação vale sozinha: assinatura e expiração são
// checadas sem consultar o registry.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTCodec(secret []byte, ttl time.Duration) *JWTCodec {
	return &JWTCodec{secret: secret, ttl: ttl}
}

func (c *JWTCodec) TTL() time.Duration { return c.ttl }

type credentialClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (c *JWTCodec) Issue(sessionID string, now time.Time) (string, error) {
	claims := credentialClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *JWTCodec) Verify(token string) (string, error) {
	claims := &credentialClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !tok.Valid || claims.SessionID == "" {
		return "", errors.New("invalid credential")
	}
	return claims.SessionID, nil
}
