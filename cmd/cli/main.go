package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "coursehub",
		Usage: "Browse the course catalog and track progress",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: defaultBaseURL, Usage: "API base URL", Sources: cli.EnvVars("COURSEHUB_API")},
			&cli.StringFlag{Name: "grpc", Usage: "gRPC address; catalog commands use it instead of HTTP when set", Sources: cli.EnvVars("COURSEHUB_GRPC_TARGET")},
			&cli.StringFlag{Name: "token", Value: defaultTokenPath(), Usage: "token file path"},
		},
		Commands: []*cli.Command{
			coursesCmd(),
			topicCmd(),
			navCmd(),
			authCmd(),
			progressCmd(),
			syncCmd(),
			exportCmd(),
			validateCmd(),
			flattenCmd(),
		},
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.coursehub-token.json"
	}
	return filepath.Join(home, ".coursehub", "token.json")
}
