package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"coursehub/internal/catalog"
	"coursehub/internal/content"
	"coursehub/pkg/database"
	"coursehub/pkg/models"
	"coursehub/pkg/utils"
)

func main() {
	var (
		contentPath = flag.String("content", utils.LoadServerConfig().ContentPath, "content file or directory")
		topicsOut   = flag.String("topics", "data/topics.csv", "output CSV path for the flattened catalog")
		progressOut = flag.String("progress", "data/topic_progress.csv", "output CSV path for topic progress")
		enrollOut   = flag.String("enrollments", "data/enrollments.csv", "output CSV path for enrollments")
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

	if err := writeFile(*topicsOut, func(w io.Writer) error {
		return exportTopics(w, catalog.Flatten(courses))
	}); err != nil {
		log.Fatalf("export topics failed: %v", err)
	}
	if err := writeFile(*progressOut, func(w io.Writer) error {
		return exportProgress(ctx, db, w)
	}); err != nil {
		log.Fatalf("export topic progress failed: %v", err)
	}
	if err := writeFile(*enrollOut, func(w io.Writer) error {
		return exportEnrollments(ctx, db, w)
	}); err != nil {
		log.Fatalf("export enrollments failed: %v", err)
	}

	log.Printf("exported topics to %s, progress to %s, enrollments to %s", *topicsOut, *progressOut, *enrollOut)
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportTopics(out io.Writer, entries []models.FlatEntry) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{
		"position", "id", "title", "description", "course_key", "course_title", "section_key", "section_title",
	}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{
			strconv.Itoa(e.Position),
			e.ID,
			e.Title,
			e.Description,
			e.CourseKey,
			e.CourseTitle,
			e.SectionKey,
			e.SectionTitle,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportProgress(ctx context.Context, db *sql.DB, out io.Writer) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"user_id", "topic_id", "course_key", "completed_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT user_id, topic_id, course_key, completed_at
		FROM topic_progress
		ORDER BY user_id, completed_at
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID, topicID, courseKey string
			completedAt                time.Time
		)
		if err := rows.Scan(&userID, &topicID, &courseKey, &completedAt); err != nil {
			return err
		}
		if err := w.Write([]string{userID, topicID, courseKey, completedAt.UTC().Format(time.RFC3339)}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportEnrollments(ctx context.Context, db *sql.DB, out io.Writer) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"user_id", "course_key", "status", "current_topic_id", "updated_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT user_id, course_key, status, current_topic_id, updated_at
		FROM enrollments
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID, courseKey, status string
			currentTopic              sql.NullString
			updatedAt                 sql.NullTime
		)
		if err := rows.Scan(&userID, &courseKey, &status, &currentTopic, &updatedAt); err != nil {
			return err
		}

		updated := ""
		if updatedAt.Valid {
			updated = updatedAt.Time.UTC().Format(time.RFC3339)
		}
		if err := w.Write([]string{userID, courseKey, status, currentTopic.String, updated}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
