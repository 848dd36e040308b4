package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lamwh/microblog-backend/api"
	"github.com/lamwh/microblog-backend/db/model"
	"github.com/lamwh/microblog-backend/db/repo"
	"github.com/lamwh/microblog-backend/middleware"
	"github.com/sirupsen/logrus"
)

const defaultPerPage = 30

type Handlers struct {
	logger *logrus.Logger
}

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	users, err := repo.ListUsers(r.Context(), defaultPerPage, (page-1)*defaultPerPage)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(api.NewOutUsers(users))
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	target := r.Context().Value("target").(*model.User)
	json.NewEncoder(w).Encode(api.NewOutUser(target))
}

// destroyUser is the admin user-management action. Admins cannot
// destroy themselves.
func (h *Handlers) destroyUser(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	target := r.Context().Value("target").(*model.User)
	if !u.Admin {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if u.ID == target.ID {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("cannot destroy yourself"))
		return
	}
	if err := repo.DeleteUser(r.Context(), target.ID); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) toggleAdmin(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	target := r.Context().Value("target").(*model.User)
	if !u.Admin {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	updated, err := repo.ToggleAdmin(r.Context(), target.ID)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(api.NewOutUser(updated))
}

func (h *Handlers) following(w http.ResponseWriter, r *http.Request) {
	target := r.Context().Value("target").(*model.User)
	users, err := repo.Following(r.Context(), target.ID)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(api.NewOutUsers(users))
}

func (h *Handlers) followers(w http.ResponseWriter, r *http.Request) {
	target := r.Context().Value("target").(*model.User)
	users, err := repo.Followers(r.Context(), target.ID)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(api.NewOutUsers(users))
}

func (h *Handlers) microposts(w http.ResponseWriter, r *http.Request) {
	target := r.Context().Value("target").(*model.User)
	limit := defaultPerPage
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	posts, err := repo.MicropostsByUser(r.Context(), target.ID, limit)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(api.NewOutMicroposts(posts))
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.Get("/", h.listUsers)
		r.Route("/{userID}", func(r chi.Router) {
			r.Use(middleware.WithTargetUser(h.logger))
			r.Get("/", h.getUser)
			r.Delete("/", h.destroyUser)
			r.Post("/admin", h.toggleAdmin)
			r.Get("/following", h.following)
			r.Get("/followers", h.followers)
			r.Get("/microposts", h.microposts)
		})
	})
}

func NewHandlers(l *logrus.Logger) *Handlers {
	return &Handlers{l}
}
