package main

import (
	"github.com/joho/godotenv"

	"github.com/RentoYabuki06/wikipedia-rag/internal/cli"
)

func main() {
	// Missing .env is fine; API keys may come from the environment.
	_ = godotenv.Load()

	cli.Execute()
}
