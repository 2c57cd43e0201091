package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/df07/go-sphere-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	webServer := server.NewServer(*port)

	log.Printf("Sphere Path Tracer Web Server")
	log.Printf("Render with http://localhost:%d/api/image?scene=default or stream passes from /api/render", *port)

	if err := webServer.Start(ctx); err != nil {
		log.Printf("Error running server: %v", err)
		os.Exit(1)
	}
}
