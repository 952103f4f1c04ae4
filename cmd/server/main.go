// Package main is the entry point for the als2midi API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/als2midi/pkg/api"
)

func main() {
	port := flag.Int("port", api.DefaultPort, "Server port")
	flag.Parse()

	fmt.Printf("Starting als2midi API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at %s\n", api.DocsURL(*port))

	if err := api.StartServer(*port); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
