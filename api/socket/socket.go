package socket

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/lamwh/microblog-backend/db/model"
	"github.com/lamwh/microblog-backend/middleware"
	"github.com/lamwh/microblog-backend/ws"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handlers struct {
	logger *logrus.Logger
}

// serveWs upgrades the connection and registers the signed-in user as
// a live feed listener. New posts from followed users are pushed here.
func (h *Handlers) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Println(err)
		return
	}
	u := r.Context().Value("user").(*model.User)
	s := r.Context().Value("session").(*model.Session)
	c := ws.NewClient(&ws.ClientCfg{
		Logger: h.logger,
		Hub:    ws.GetHub(),
		Conn:   conn,
		UserID: u.ID,
		IP:     s.IP,
	})
	ws.GetHub().Register() <- c
	go c.WritePump()
	go c.ReadPump()
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/socket", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.Get("/", h.serveWs)
	})
}

func NewHandlers(logger *logrus.Logger) *Handlers {
	return &Handlers{logger}
}
