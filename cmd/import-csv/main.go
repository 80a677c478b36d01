package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"coursehub/internal/auth"
	"coursehub/internal/catalog"
	"coursehub/internal/content"
	"coursehub/internal/progress"
	"coursehub/pkg/database"
	"coursehub/pkg/models"
	"coursehub/pkg/utils"
)

func main() {
	var (
		contentPath = flag.String("content", utils.LoadServerConfig().ContentPath, "content file or directory")
		progressIn  = flag.String("progress", "data/topic_progress.csv", "input CSV path for topic progress")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	courses, err := content.Load(*contentPath)
	if err != nil {
		log.Fatalf("load content failed: %v", err)
	}

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	f, err := os.Open(*progressIn)
	if err != nil {
		log.Fatalf("open %s: %v", *progressIn, err)
	}
	defer f.Close()

	imp := &importer{
		cat:      catalog.New(courses),
		users:    auth.NewRepo(db),
		progress: progress.NewRepo(db),
	}
	res, err := imp.importProgress(ctx, f)
	if err != nil {
		log.Fatalf("import topic progress failed: %v", err)
	}

	log.Printf("imported %d rows from %s (%d already present, %d unknown topics, %d unknown users)",
		res.Imported, *progressIn, res.Existing, res.UnknownTopics, res.UnknownUsers)
}

type importer struct {
	cat      *catalog.Catalog
	users    *auth.Repo
	progress *progress.Repo
}

type result struct {
	Imported      int
	Existing      int
	UnknownTopics int
	UnknownUsers  int
}

// importProgress loads completion rows. Rows naming a topic that is not in the
// current catalog or a user that does not exist are counted and skipped; the
// course key is always taken from the catalog.
func (im *importer) importProgress(ctx context.Context, in io.Reader) (result, error) {
	var res result

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return res, err
	}

	knownUsers := make(map[string]bool)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		if len(row) == 0 {
			continue
		}

		userID := valueAt(header, row, "user_id")
		topicID := valueAt(header, row, "topic_id")
		if userID == "" || topicID == "" {
			continue
		}

		entry, ok := im.cat.Topic(topicID)
		if !ok {
			res.UnknownTopics++
			continue
		}

		exists, seen := knownUsers[userID]
		if !seen {
			u, err := im.users.GetByID(ctx, userID)
			if err != nil {
				return res, err
			}
			exists = u != nil
			knownUsers[userID] = exists
		}
		if !exists {
			res.UnknownUsers++
			continue
		}

		completedAt, err := parseTime(valueAt(header, row, "completed_at"))
		if err != nil {
			return res, fmt.Errorf("parse completed_at for %s/%s: %w", userID, topicID, err)
		}

		created, err := im.progress.MarkCompleted(ctx, models.ProgressEntry{
			UserID:      userID,
			TopicID:     entry.ID,
			CourseKey:   entry.CourseKey,
			CompletedAt: completedAt,
		})
		if err != nil {
			return res, err
		}
		if created {
			res.Imported++
		} else {
			res.Existing++
		}
	}

	return res, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseTime returns the zero time for an empty cell; MarkCompleted fills it in.
func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
