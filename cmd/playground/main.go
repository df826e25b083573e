package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/futig/rag-playground/internal/builder"
	"go.uber.org/zap"
)

func main() {
	playground, logger, err := builder.BuildPlayground()
	if err != nil {
		log.Fatal("Failed to build playground:", err)
	}
	defer func() { _ = logger.Sync() }()

	// Ctrl+C cancels a running request; on an idle prompt it quits.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	logger.Info("starting playground")
	if err := playground.Run(context.Background(), os.Stdin, interrupts); err != nil {
		logger.Error("playground stopped with error", zap.Error(err))
		log.Fatal("Playground error:", err)
	}
	logger.Info("playground stopped")
}
