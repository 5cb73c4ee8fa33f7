package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/minaorangina/shift/config"
	"github.com/minaorangina/shift/deck"
	"github.com/minaorangina/shift/engine"
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
		Transition:        engine.CLITransition(os.Stdout),
		TransitionTimeout: cfg.Transition,
		// keep the terminal for the game
		Logger: log.New(io.Discard, "", 0),
	})
	if err := session.Start(); err != nil {
		log.Fatal(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := engine.NewCLIPlayer(session, os.Stdin, os.Stdout).Play(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err.Error())
	}
}
