package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/collabboard/board-api/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// ConflictError reports a version mismatch on a conditional write and carries
// the authoritative server-side task for the caller to resolve against.
type ConflictError struct {
	Server model.Task
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: server at version %d", e.Server.Version)
}

const taskColumns = `id, title, description, assigned_user, status, priority, version, updated_at`

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, assigned_user, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns,
		uuid.NewString(), t.Title, t.Description, t.AssignedUser, t.Status, t.Priority,
	).Scan(
		&t.ID, &t.Title, &t.Description, &t.AssignedUser, &t.Status, &t.Priority, &t.Version, &t.UpdatedAt,
	)
	return t, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id string) (model.Task, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, id))
}

func (r *TaskRepo) GetByTitle(ctx context.Context, title string) (model.Task, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE title = $1
	`, title))
}

func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE ($1::text IS NULL OR title = $1)
		ORDER BY updated_at DESC, id DESC
	`, filter.Title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedUser, &t.Status, &t.Priority, &t.Version, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update applies the patch and bumps the version in a single conditional
// statement. A nil expectedVersion skips the check but still increments
// atomically. When the condition matches no row, the current record is
// re-read to tell NotFound apart from a version conflict.
func (r *TaskRepo) Update(ctx context.Context, id string, patch model.TaskPatch, expectedVersion *int) (model.Task, error) {
	t, err := r.scanOne(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title        = COALESCE($2, title),
		    description  = COALESCE($3, description),
		    assigned_user = COALESCE($4, assigned_user),
		    status       = COALESCE($5, status),
		    priority     = COALESCE($6, priority),
		    version      = version + 1,
		    updated_at   = now()
		WHERE id = $1 AND ($7::int IS NULL OR version = $7)
		RETURNING `+taskColumns,
		id, patch.Title, patch.Description, patch.AssignedUser, patch.Status, patch.Priority, expectedVersion,
	))
	if errors.Is(err, ErrNotFound) {
		current, getErr := r.Get(ctx, id)
		if getErr != nil {
			return model.Task{}, getErr
		}
		return model.Task{}, &ConflictError{Server: current}
	}
	return t, mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, id string) (model.Task, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		DELETE FROM tasks WHERE id = $1 RETURNING `+taskColumns, id))
}

// CountActive counts tasks assigned to the user that are not Done.
func (r *TaskRepo) CountActive(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks WHERE assigned_user = $1 AND status <> $2
	`, userID, model.StatusDone).Scan(&n)
	return n, err
}

func (r *TaskRepo) scanOne(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedUser, &t.Status, &t.Priority, &t.Version, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
