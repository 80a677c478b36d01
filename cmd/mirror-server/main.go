package main

import (
	"flag"
	"log"
	"net/http"

	"coursehub/internal/mirror"
)

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	dataPath := flag.String("data", "data/mirror.json", "mirror file written by export-mirror")
	flag.Parse()

	mux := http.NewServeMux()
	mux.Handle(mirror.Path, mirror.FileHandler(*dataPath))

	log.Printf("mirror-server serving %s at http://localhost%s%s", *dataPath, *addr, mirror.Path)
	log.Fatal(http.ListenAndServe(*addr, mux))
}
