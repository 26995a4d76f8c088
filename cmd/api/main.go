package main

import (
	"context"
	"log"

	"user-directory/cmd/api/app"
	"user-directory/cmd/api/server"
)

func main() {
	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	application, err := app.New()
	if err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}
