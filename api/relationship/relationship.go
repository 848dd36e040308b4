package relationship

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lamwh/microblog-backend/db/model"
	"github.com/lamwh/microblog-backend/db/repo"
	"github.com/lamwh/microblog-backend/middleware"
	"github.com/lamwh/microblog-backend/monitoring"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	logger *logrus.Logger
}

func (h *Handlers) getRelationship(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	target := r.Context().Value("target").(*model.User)
	following, err := repo.IsFollowing(r.Context(), u.ID, target.ID)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(struct {
		Following bool `json:"following"`
	}{following})
}

func (h *Handlers) follow(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	target := r.Context().Value("target").(*model.User)
	switch err := repo.Follow(r.Context(), u.ID, target.ID); {
	case errors.Is(err, repo.ErrSelfFollow):
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("cannot follow yourself"))
	case errors.Is(err, repo.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case err != nil:
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
	default:
		monitoring.FollowsTotal.Inc()
		w.WriteHeader(http.StatusCreated)
	}
}

func (h *Handlers) unfollow(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	target := r.Context().Value("target").(*model.User)
	if err := repo.Unfollow(r.Context(), u.ID, target.ID); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	monitoring.UnfollowsTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/relationships", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(h.logger), middleware.WithTargetUser(h.logger))
			r.Get("/{userID}", h.getRelationship)
			r.Post("/{userID}", h.follow)
			r.Delete("/{userID}", h.unfollow)
		})
	})
}

func NewHandlers(l *logrus.Logger) *Handlers {
	return &Handlers{l}
}
