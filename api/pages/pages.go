package pages

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	logger *logrus.Logger
}

type page struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var static = map[string]page{
	"home":    {"Home", "A tutorial-style microblogging service."},
	"about":   {"About", "Users post short messages and follow each other."},
	"help":    {"Help", "Sign up, sign in, post, follow."},
	"contact": {"Contact", "Reach the maintainers on the project tracker."},
}

func (h *Handlers) serve(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(static[name])
	}
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Get("/", h.serve("home"))
	r.Get("/about", h.serve("about"))
	r.Get("/help", h.serve("help"))
	r.Get("/contact", h.serve("contact"))
}

func NewHandlers(l *logrus.Logger) *Handlers {
	return &Handlers{l}
}
