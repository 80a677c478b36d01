package enrollment

import (
	"context"
	"database/sql"
	"fmt"

	"coursehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert inserts or updates a user's enrollment in a course. An empty
// CurrentTopicID leaves the stored one in place.
func (r *Repo) Upsert(ctx context.Context, e models.Enrollment) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO enrollments (user_id, course_key, status, current_topic_id, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, course_key) DO UPDATE SET
			status = excluded.status,
			current_topic_id = COALESCE(excluded.current_topic_id, enrollments.current_topic_id),
			updated_at = CURRENT_TIMESTAMP
	`, e.UserID, e.CourseKey, e.Status, nullString(e.CurrentTopicID))
	if err != nil {
		return fmt.Errorf("upsert enrollment: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, courseKey string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM enrollments
		WHERE user_id = ? AND course_key = ?
	`, userID, courseKey)
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context, userID, status string, limit, offset int) ([]models.Enrollment, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := `WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, course_key, status, current_topic_id, updated_at
		FROM enrollments `+where+`
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	out := make([]models.Enrollment, 0, limit)
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}

	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, userID, courseKey string) (*models.Enrollment, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, course_key, status, current_topic_id, updated_at
		FROM enrollments
		WHERE user_id = ? AND course_key = ?
	`, userID, courseKey)

	e, err := scan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (models.Enrollment, error) {
	var e models.Enrollment
	var current sql.NullString
	if err := s.Scan(&e.UserID, &e.CourseKey, &e.Status, &current, &e.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return e, err
		}
		return e, fmt.Errorf("scan enrollment: %w", err)
	}
	e.CurrentTopicID = current.String
	return e, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
