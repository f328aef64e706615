package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/collabboard/board-api/internal/model"
	"github.com/collabboard/board-api/internal/repo"
)

var (
	ErrInvalidTitle    = errors.New("invalid or forbidden task title")
	ErrDuplicateTitle  = errors.New("task title must be unique")
	ErrInvalidField    = errors.New("invalid field value")
	ErrNoEligibleUsers = errors.New("no users available for assignment")
)

// Broadcaster pushes events to every connected subscriber. Injected at
// construction so tests can observe the fan-out with a fake.
type Broadcaster interface {
	BroadcastTask(model.Task)
	BroadcastLog(model.ActionLog)
}

// reservedTitles are the column names; a task may not shadow them.
// Exact match, case-sensitive.
var reservedTitles = map[string]struct{}{
	string(model.StatusTodo):       {},
	string(model.StatusInProgress): {},
	string(model.StatusDone):       {},
}

// TaskService orchestrates every board mutation: validate, write through the
// store's conditional-write path, then audit and broadcast. The audit entry
// and both broadcasts happen only after the storage write is accepted, and
// their failure never rolls the mutation back.
type TaskService struct {
	tasks    repo.TaskRepository
	selector *Selector
	audit    *AuditRecorder
	hub      Broadcaster
	logger   *zap.Logger
}

func NewTaskService(tasks repo.TaskRepository, selector *Selector, audit *AuditRecorder, hub Broadcaster, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		selector: selector,
		audit:    audit,
		hub:      hub,
		logger:   logger,
	}
}

func (s *TaskService) Create(ctx context.Context, actorID string, t model.Task) (model.Task, error) {
	if err := validateTitle(t.Title); err != nil {
		return model.Task{}, err
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !model.ValidStatus(t.Status) || !model.ValidPriority(t.Priority) {
		return model.Task{}, ErrInvalidField
	}

	if _, err := s.tasks.GetByTitle(ctx, t.Title); err == nil {
		return model.Task{}, ErrDuplicateTitle
	} else if !errors.Is(err, repo.ErrNotFound) {
		return model.Task{}, err
	}

	created, err := s.tasks.Create(ctx, t)
	if errors.Is(err, repo.ErrDuplicate) {
		// The unique index is authoritative when two creates race.
		return model.Task{}, ErrDuplicateTitle
	}
	if err != nil {
		return model.Task{}, err
	}

	s.publish(ctx, actorID, model.ActionCreate, created)
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	return s.tasks.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return s.tasks.List(ctx, filter)
}

// Update applies a partial patch guarded by expectedVersion. A nil
// expectedVersion applies unconditionally; a mismatch surfaces the live
// server record via repo.ConflictError and changes nothing.
func (s *TaskService) Update(ctx context.Context, actorID, id string, patch model.TaskPatch, expectedVersion *int) (model.Task, error) {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return model.Task{}, err
		}
		if existing, err := s.tasks.GetByTitle(ctx, *patch.Title); err == nil && existing.ID != id {
			return model.Task{}, ErrDuplicateTitle
		} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return model.Task{}, err
		}
	}
	if patch.Status != nil && !model.ValidStatus(*patch.Status) {
		return model.Task{}, ErrInvalidField
	}
	if patch.Priority != nil && !model.ValidPriority(*patch.Priority) {
		return model.Task{}, ErrInvalidField
	}

	updated, err := s.tasks.Update(ctx, id, patch, expectedVersion)
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Task{}, ErrDuplicateTitle
	}
	if err != nil {
		return model.Task{}, err
	}

	s.publish(ctx, actorID, model.ActionUpdate, updated)
	return updated, nil
}

// Delete removes the task and publishes its last-known state so clients can
// drop it from view. The audit snapshot is taken from the row as it was
// immediately before deletion.
func (s *TaskService) Delete(ctx context.Context, actorID, id string) (model.Task, error) {
	deleted, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	s.publish(ctx, actorID, model.ActionDelete, deleted)
	return deleted, nil
}

// SmartAssign assigns the task to the least-loaded user. The write goes
// through the same version-checked path as every other mutation, so a
// concurrent edit between the read and the assignment surfaces as a conflict
// instead of clobbering it.
func (s *TaskService) SmartAssign(ctx context.Context, actorID, id string) (model.Task, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	userID, err := s.selector.LeastLoaded(ctx)
	if err != nil {
		return model.Task{}, err
	}

	expected := t.Version
	updated, err := s.tasks.Update(ctx, id, model.TaskPatch{AssignedUser: &userID}, &expected)
	if err != nil {
		return model.Task{}, err
	}

	s.publish(ctx, actorID, model.ActionSmartAssign, updated)
	return updated, nil
}

// publish runs the best-effort follow-ups to a committed mutation: the task
// broadcast first, then the audit append (which broadcasts the log entry).
func (s *TaskService) publish(ctx context.Context, actorID string, action model.Action, snapshot model.Task) {
	s.hub.BroadcastTask(snapshot)
	if _, err := s.audit.Record(ctx, actorID, action, snapshot); err != nil {
		s.logger.Error("failed to record audit entry",
			zap.String("action", string(action)),
			zap.String("task_id", snapshot.ID),
			zap.Error(err),
		)
	}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrInvalidTitle
	}
	if _, reserved := reservedTitles[title]; reserved {
		return ErrInvalidTitle
	}
	return nil
}
