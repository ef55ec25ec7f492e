package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := newCLIApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
