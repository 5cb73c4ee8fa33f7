package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/minaorangina/shift/config"
	"github.com/minaorangina/shift/deck"
	"github.com/minaorangina/shift/engine"
	"github.com/minaorangina/shift/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err.Error())
	}

	storage, closer, err := cfg.OpenStorage()
	if err != nil {
		log.Fatal(err.Error())
	}
	defer closer.Close()

	session := engine.NewSession(engine.SessionOpts{
		Source:            cfg.CatalogSource(),
		Storage:           storage,
		StorageKey:        cfg.StorageKey,
		RNG:               deck.NewRNG(cfg.Seed),
		TransitionTimeout: cfg.Transition,
	})
	// an unavailable catalog is shown to the player rather than ending the process
	_ = session.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := server.NewServer(session, server.ServerOpts{AllowedOrigins: cfg.AllowedOrigins})
	s.Addr = cfg.Addr
	go s.Listen(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(shutdownCtx)
	}()

	log.Printf("Listening on %s...", cfg.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err.Error())
	}
}
