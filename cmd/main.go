package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"

	"github.com/yungbote/materials-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}

	runErr := application.Run(ctx)
	if runErr != nil {
		application.Log.Error("Server failed", "error", runErr)
	}
	if err := multierr.Append(runErr, application.Close()); err != nil {
		os.Exit(1)
	}
}
