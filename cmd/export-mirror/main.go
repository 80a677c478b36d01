package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coursehub/internal/catalog"
	"coursehub/internal/content"
	"coursehub/internal/mirror"
	"coursehub/pkg/utils"
)

func main() {
	var (
		contentPath = flag.String("content", utils.LoadServerConfig().ContentPath, "local content file or directory")
		from        = flag.String("from", "", "comma-separated mirror base URLs merged after local content")
		outPath     = flag.String("out", "data/mirror.json", "output JSON path")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	local, err := content.Load(*contentPath)
	if err != nil {
		log.Fatalf("load content failed: %v", err)
	}

	sources := []mirror.Source{mirror.StaticSource{Label: *contentPath, List: local}}
	for _, u := range strings.Split(*from, ",") {
		if u = strings.TrimSpace(u); u != "" {
			sources = append(sources, mirror.NewHTTPSource(strings.TrimRight(u, "/")))
		}
	}
	courses := mirror.Collect(ctx, sources...)

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("mkdir failed: %v", err)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("create failed: %v", err)
	}
	if err := mirror.Write(f, courses); err != nil {
		f.Close()
		log.Fatalf("write failed: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close failed: %v", err)
	}

	log.Printf("exported %d courses, %d topics to %s", len(courses), catalog.New(courses).Len(), *outPath)
}
