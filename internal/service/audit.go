package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/collabboard/board-api/internal/model"
	"github.com/collabboard/board-api/internal/repo"
)

var ErrMissingActor = errors.New("audit entry requires an actor and an action")

// AuditRecorder appends one immutable record per accepted mutation and pushes
// it to subscribers. Append-only: nothing here ever mutates or deletes an
// existing entry.
type AuditRecorder struct {
	logs   repo.LogRepository
	users  repo.UserRepository
	hub    Broadcaster
	logger *zap.Logger
}

func NewAuditRecorder(logs repo.LogRepository, users repo.UserRepository, hub Broadcaster, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{
		logs:   logs,
		users:  users,
		hub:    hub,
		logger: logger,
	}
}

func (a *AuditRecorder) Record(ctx context.Context, actorID string, action model.Action, snapshot model.Task) (model.ActionLog, error) {
	if actorID == "" || action == "" {
		return model.ActionLog{}, ErrMissingActor
	}

	entry, err := a.logs.Append(ctx, model.ActionLog{
		UserID: actorID,
		Action: action,
		Task:   snapshot,
	})
	if err != nil {
		return model.ActionLog{}, err
	}

	// Subscribers get the actor populated; a failed lookup only leaves the
	// ref empty, it never blocks the push.
	if actor, err := a.users.Get(ctx, actorID); err == nil {
		entry.User = &model.UserRef{Username: actor.Username, Email: actor.Email}
	} else {
		a.logger.Warn("failed to populate audit actor", zap.String("user_id", actorID), zap.Error(err))
	}
	a.hub.BroadcastLog(entry)

	return entry, nil
}

// Recent returns the newest entries, capped at limit.
func (a *AuditRecorder) Recent(ctx context.Context, limit int) ([]model.ActionLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return a.logs.Recent(ctx, limit)
}
