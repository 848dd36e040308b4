package micropost

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lamwh/microblog-backend/api"
	"github.com/lamwh/microblog-backend/db/model"
	"github.com/lamwh/microblog-backend/db/repo"
	"github.com/lamwh/microblog-backend/middleware"
	"github.com/lamwh/microblog-backend/monitoring"
	"github.com/lamwh/microblog-backend/mq"
	"github.com/lamwh/microblog-backend/ws"
	"github.com/sirupsen/logrus"
)

const feedLimit = 30

type Handlers struct {
	logger *logrus.Logger
}

func (h *Handlers) createMicropost(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m, err := repo.CreateMicropost(r.Context(), u.ID, body.Content)
	if err != nil {
		if api.WriteValidationErrors(w, err) {
			return
		}
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	monitoring.MicropostsPosted.Inc()
	m.User = u
	h.postCreate(r, m)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(api.NewOutMicropost(m))
}

// postCreate fans the new post out: an event on the queue for
// downstream consumers, and a live push to connected followers.
func (h *Handlers) postCreate(r *http.Request, m *model.Micropost) {
	if err := mq.PublishPost(m); err != nil {
		h.logger.Println(err)
	}
	ids, err := repo.FollowerIDs(r.Context(), m.UserID)
	if err != nil {
		h.logger.Println(err)
		return
	}
	payload, err := json.Marshal(api.NewOutMicropost(m))
	if err != nil {
		h.logger.Println(err)
		return
	}
	ws.GetHub().Push(append(ids, m.UserID), payload)
}

func (h *Handlers) destroyMicropost(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	id, err := strconv.ParseUint(chi.URLParam(r, "micropostID"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	switch err := repo.DestroyMicropost(r.Context(), uint(id), u.ID); {
	case errors.Is(err, repo.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, repo.ErrNotOwner):
		w.WriteHeader(http.StatusForbidden)
	case err != nil:
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handlers) feed(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	limit := feedLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	posts, err := repo.Feed(r.Context(), u.ID, limit)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(api.NewOutMicroposts(posts))
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/microposts", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.Post("/", h.createMicropost)
		r.Delete("/{micropostID}", h.destroyMicropost)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.With(middleware.NoCache).Get("/feed", h.feed)
	})
}

func NewHandlers(l *logrus.Logger) *Handlers {
	return &Handlers{l}
}
