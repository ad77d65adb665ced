package main

import (
	"github.com/joho/godotenv"

	"github.com/regulens/standards-rag/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// A .env file is a local convenience; its absence is fine.
	_ = godotenv.Load()
}
