package feedback

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

type Stats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

func (r *Repo) Create(ctx context.Context, userID, topicID string, rating int, text string) (*models.Feedback, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO feedback (user_id, topic_id, rating, text)
		VALUES (?, ?, ?, ?)
	`, userID, topicID, rating, text)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Feedback, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, topic_id, rating, text, timestamp
		FROM feedback
		WHERE id = ?
	`, id)

	var fb models.Feedback
	var text sql.NullString
	if err := row.Scan(&fb.ID, &fb.UserID, &fb.TopicID, &fb.Rating, &text, &fb.Timestamp); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	fb.Text = text.String
	return &fb, nil
}

func (r *Repo) ListByTopic(ctx context.Context, topicID string, limit, offset int) ([]models.Feedback, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, topic_id, rating, text, timestamp
		FROM feedback
		WHERE topic_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`, topicID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	out := make([]models.Feedback, 0, limit)
	for rows.Next() {
		var fb models.Feedback
		var text sql.NullString
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.TopicID, &fb.Rating, &text, &fb.Timestamp); err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}
		fb.Text = text.String
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) TopicStats(ctx context.Context, topicID string) (Stats, error) {
	var s Stats
	var avg sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(rating) FROM feedback WHERE topic_id = ?
	`, topicID).Scan(&s.Count, &avg); err != nil {
		return s, fmt.Errorf("feedback stats: %w", err)
	}
	s.Average = avg.Float64
	return s, nil
}

// Delete only removes feedback owned by userID.
func (r *Repo) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM feedback
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete feedback: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}
