package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lamwh/microblog-backend/env"
)

const tokenTTL = 24 * time.Hour

// genAccessToken signs an HS256 token bound to the device (aud) and
// the session (jti).
func genAccessToken(aud, sub, jti string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		IssuedAt:  time.Now().Unix(),
		Issuer:    "microblog",
		Audience:  aud,
		Subject:   sub,
		Id:        jti,
	})
	return token.SignedString(env.HS256_SECRET)
}
