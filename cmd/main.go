package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/shadownav-backend/internal/app"
	"github.com/yungbote/shadownav-backend/internal/platform/tracing"
)

func main() {
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	shutdownTracing, err := tracing.Init(context.Background(), "shadownav-backend", a.Log)
	if err != nil {
		a.Log.Warn("Tracing init failed", "error", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				a.Log.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr, "env", a.Cfg.Env)
	if err := a.Run(addr); err != nil {
		a.Log.Error("Server failed", "error", err)
	}
}
