package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coursehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// MarkCompleted is idempotent; completing a topic twice keeps the first time.
func (r *Repo) MarkCompleted(ctx context.Context, entry models.ProgressEntry) (bool, error) {
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now().UTC()
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO topic_progress (user_id, topic_id, course_key, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, topic_id) DO NOTHING
	`, entry.UserID, entry.TopicID, entry.CourseKey, entry.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("insert topic progress: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Unmark(ctx context.Context, userID, topicID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM topic_progress
		WHERE user_id = ? AND topic_id = ?
	`, userID, topicID)
	if err != nil {
		return false, fmt.Errorf("delete topic progress: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context, userID, courseKey string, limit, offset int) ([]models.ProgressEntry, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	where := `WHERE user_id = ?`
	args := []any{userID}
	if courseKey != "" {
		where += ` AND course_key = ?`
		args = append(args, courseKey)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM topic_progress `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count topic progress: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, topic_id, course_key, completed_at
		FROM topic_progress `+where+`
		ORDER BY completed_at DESC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list topic progress: %w", err)
	}
	defer rows.Close()

	out := make([]models.ProgressEntry, 0, limit)
	for rows.Next() {
		var entry models.ProgressEntry
		if err := rows.Scan(&entry.UserID, &entry.TopicID, &entry.CourseKey, &entry.CompletedAt); err != nil {
			return nil, 0, fmt.Errorf("scan topic progress: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows topic progress: %w", err)
	}

	return out, total, nil
}

// CompletedSet returns every topic id the user has completed.
func (r *Repo) CompletedSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT topic_id FROM topic_progress WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("completed set: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan completed set: %w", err)
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows completed set: %w", err)
	}
	return out, nil
}
