package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"tradewatch/cmd"
)

func main() {
	// Optional .env for local development; real env vars win either way.
	_ = godotenv.Load()

	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
