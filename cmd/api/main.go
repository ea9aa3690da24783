package main

import (
	"context"
	"log"

	"github.com/yel-hadr/resume-parser/internal/bootstrap"
	"github.com/yel-hadr/resume-parser/internal/shared/config"
	"github.com/yel-hadr/resume-parser/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if app.Sweeper != nil {
		go app.Sweeper.Run(ctx)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("listening on %s (env=%s store=%s)", addr, cfg.Env, cfg.ObjectStoreType)
	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
