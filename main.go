package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/klokku/studyplan/internal/app"
	"github.com/klokku/studyplan/internal/config"
	"github.com/klokku/studyplan/internal/logging"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := logging.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := application.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
