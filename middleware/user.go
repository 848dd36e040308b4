package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lamwh/microblog-backend/db/repo"
	"github.com/sirupsen/logrus"
)

// WithTargetUser resolves the {userID} route param and injects the
// referenced user as "target".
func WithTargetUser(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 64)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			u, err := repo.UserByID(r.Context(), uint(id))
			if err != nil {
				logger.Println(err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if u == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			ctx := context.WithValue(r.Context(), "target", u)
			h.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
