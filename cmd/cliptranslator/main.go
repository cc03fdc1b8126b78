package main

import (
	"fmt"
	"log"
	"os"

	"github.com/techtalk/clip-translator/internal/app"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("%s %s starting...", app.AppName, version)

	application, err := app.New(version, app.WithLegacyBackend(newLegacyBackend))
	if err != nil {
		log.Fatalf("Error starting application: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	application.Run()
}
