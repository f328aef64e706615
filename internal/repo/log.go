package repo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/collabboard/board-api/internal/model"
)

type LogRepo struct {
	pool *pgxpool.Pool
}

func NewLogRepo(pool *pgxpool.Pool) *LogRepo {
	return &LogRepo{pool: pool}
}

// Append inserts one immutable record. The task snapshot is stored by value
// as JSONB so it outlives the task row it was taken from.
func (r *LogRepo) Append(ctx context.Context, entry model.ActionLog) (model.ActionLog, error) {
	snapshot, err := json.Marshal(entry.Task)
	if err != nil {
		return entry, err
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO action_logs (id, user_id, action, task)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, action, created_at
	`, uuid.NewString(), entry.UserID, entry.Action, snapshot).Scan(
		&entry.ID, &entry.UserID, &entry.Action, &entry.Timestamp,
	)
	return entry, mapError(err)
}

// Recent returns the newest entries first with the actor populated.
func (r *LogRepo) Recent(ctx context.Context, limit int) ([]model.ActionLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.user_id, l.action, l.task, l.created_at, u.username, u.email
		FROM action_logs l
		JOIN users u ON u.id = l.user_id
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]model.ActionLog, 0, limit)
	for rows.Next() {
		var (
			entry    model.ActionLog
			snapshot []byte
			user     model.UserRef
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &snapshot, &entry.Timestamp, &user.Username, &user.Email); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(snapshot, &entry.Task); err != nil {
			return nil, err
		}
		entry.User = &user
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
