package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yungbote/nishad-backend/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("load .env: %v\n", err)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Start(); err != nil {
		application.Log.Error("start background workers", "error", err)
		os.Exit(1)
	}

	errc := make(chan error, 1)
	go func() { errc <- application.Run() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		application.Log.Info("Shutting down", "signal", s.String())
	case err := <-errc:
		if err != nil {
			application.Log.Error("Server failed", "error", err)
		}
	}
}
