package main

import (
	"log/slog"
	"os"

	"github.com/studydeck/backend/internal/simulation"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dir, err := os.MkdirTemp("", "studydeck-demo")
	if err != nil {
		logger.Error("failed to create temp dir", "error", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	if err := simulation.Run(dir, logger); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}
