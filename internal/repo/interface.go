package repo

import (
	"context"

	"github.com/collabboard/board-api/internal/model"
)

// TaskRepository is the task store. Update is the single serialization point:
// the version check and the write happen in one conditional statement.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	GetByTitle(ctx context.Context, title string) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch, expectedVersion *int) (model.Task, error)
	Delete(ctx context.Context, id string) (model.Task, error)
	CountActive(ctx context.Context, userID string) (int, error)
}

type LogRepository interface {
	Append(ctx context.Context, entry model.ActionLog) (model.ActionLog, error)
	Recent(ctx context.Context, limit int) ([]model.ActionLog, error)
}

type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	Get(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}
