package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lamwh/microblog-backend/db"
	"github.com/lamwh/microblog-backend/db/model"
	"github.com/lamwh/microblog-backend/env"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Authenticator verifies the accessToken cookie, checks the token is
// bound to the requesting device and a live session, and injects the
// signed-in user and session into the request context.
func Authenticator(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie("accessToken")
			if err != nil {
				if errors.Is(err, http.ErrNoCookie) {
					w.WriteHeader(http.StatusUnauthorized)
				} else {
					logger.Println(err)
					w.WriteHeader(http.StatusInternalServerError)
				}
				return
			}
			t, err := jwt.Parse(c.Value, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return env.HS256_SECRET, nil
			})
			if err != nil || !t.Valid {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claims, ok := t.Claims.(jwt.MapClaims)
			if !ok || claims["aud"] != r.Context().Value("deviceIP") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			uid, _ := claims["sub"].(string)
			ip, _ := claims["aud"].(string)
			jti, _ := claims["jti"].(string)

			conn := db.GetDB(r.Context())
			var u model.User
			if err := conn.Preload("Sessions").First(&u, uid).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					w.WriteHeader(http.StatusForbidden)
				} else {
					logger.Println(err)
					w.WriteHeader(http.StatusInternalServerError)
				}
				return
			}
			var s *model.Session
			for i := range u.Sessions {
				if u.Sessions[i].IP == ip && u.Sessions[i].Token == jti {
					s = &u.Sessions[i]
					break
				}
			}
			if s == nil {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("session does not exist"))
				return
			}
			ctx := context.WithValue(context.WithValue(r.Context(), "user", &u), "session", s)
			h.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
