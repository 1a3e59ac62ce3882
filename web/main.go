package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-dof-raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	sceneFile := flag.String("scene-file", "", "Scene description file (reload with POST /api/reload)")
	flag.Parse()

	webServer, err := server.NewServer(*port, *sceneFile)
	if err != nil {
		log.Printf("Error creating server: %v", err)
		os.Exit(1)
	}
	defer webServer.Close()

	log.Printf("Depth of Field Raytracer Web Server")
	log.Printf("Visit http://localhost:%d/api/render to render a frame", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
