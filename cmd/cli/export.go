package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	cli "github.com/urfave/cli/v3"

	"coursehub/pkg/models"
)

type topicListResponse struct {
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Items  []models.TopicRef `json:"items"`
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export the flattened catalog from the API",
		ArgsUsage: "<json|csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "output path (default data/topics.<format>)"},
			&cli.StringFlag{Name: "course", Usage: "limit to one course"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format := cmd.Args().First()
			if format != "json" && format != "csv" {
				return errors.New("usage: coursehub export <json|csv>")
			}
			out := cmd.String("out")
			if out == "" {
				out = filepath.Join("data", "topics."+format)
			}

			items, err := fetchTopics(ctx, httpClient(), cmd.String("api"), cmd.String("course"))
			if err != nil {
				return fmt.Errorf("export %s failed: %w", format, err)
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if format == "json" {
				err = writeTopicsJSON(f, items)
			} else {
				err = writeTopicsCSV(f, items)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "exported %d topics to %s\n", len(items), out)
			return nil
		},
	}
}

func fetchTopics(ctx context.Context, client *http.Client, baseURL, course string) ([]models.TopicRef, error) {
	const pageSize = 200
	var out []models.TopicRef
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(len(out)))
		if course != "" {
			q.Set("course", course)
		}

		var resp topicListResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/topics?"+q.Encode(), "", nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Items...)
		if len(resp.Items) == 0 || len(out) >= resp.Total {
			return out, nil
		}
	}
}

func writeTopicsJSON(w io.Writer, items []models.TopicRef) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func writeTopicsCSV(w io.Writer, items []models.TopicRef) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"position", "id", "title", "course_key", "course_title", "section_key", "section_title",
	}); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write([]string{
			strconv.Itoa(item.Position),
			item.ID,
			item.Title,
			item.CourseKey,
			item.CourseTitle,
			item.SectionKey,
			item.SectionTitle,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
