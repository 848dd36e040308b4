package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/lamwh/microblog-backend/api/auth"
	"github.com/lamwh/microblog-backend/api/micropost"
	"github.com/lamwh/microblog-backend/api/pages"
	"github.com/lamwh/microblog-backend/api/relationship"
	"github.com/lamwh/microblog-backend/api/socket"
	"github.com/lamwh/microblog-backend/api/user"
	"github.com/lamwh/microblog-backend/db"
	"github.com/lamwh/microblog-backend/logger"
	"github.com/lamwh/microblog-backend/mq"
	"github.com/lamwh/microblog-backend/server"
	"github.com/lamwh/microblog-backend/ws"
)

func cleanup() {
	mq.StopProducers()
	ws.GetHub().Close()
}

func main() {
	log := logger.New()

	if err := db.Init(); err != nil {
		log.Fatalln(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cleanup()
		log.Println("quit")
		os.Exit(0)
	}()

	go ws.GetHub().Run()

	r := chi.NewRouter()
	server.SetupMiddlewares(r)

	pages.NewHandlers(log).SetupRoutes(r)
	auth.NewHandlers(log).SetupRoutes(r)
	user.NewHandlers(log).SetupRoutes(r)
	micropost.NewHandlers(log).SetupRoutes(r)
	relationship.NewHandlers(log).SetupRoutes(r)
	socket.NewHandlers(log).SetupRoutes(r)

	srv := server.New(r)
	log.Printf("listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalln(err)
	}
}
