package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
