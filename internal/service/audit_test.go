package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/collabboard/board-api/internal/model"
	"github.com/collabboard/board-api/internal/repo"
)

func TestAuditRecorder_Record(t *testing.T) {
	logs := new(MockLogRepository)
	users := new(MockUserRepository)
	hub := &fakeHub{}
	rec := NewAuditRecorder(logs, users, hub, zap.NewNop())

	snapshot := model.Task{ID: "t1", Title: "Ship it", Version: 3}
	logs.On("Append", mock.Anything, mock.MatchedBy(func(e model.ActionLog) bool {
		return e.UserID == "actor-1" && e.Action == model.ActionUpdate && e.Task == snapshot
	})).Return(model.ActionLog{ID: "log-1", UserID: "actor-1", Action: model.ActionUpdate, Task: snapshot}, nil)
	users.On("Get", mock.Anything, "actor-1").Return(model.User{ID: "actor-1", Username: "alice", Email: "alice@example.com"}, nil)

	entry, err := rec.Record(context.Background(), "actor-1", model.ActionUpdate, snapshot)

	require.NoError(t, err)
	assert.Equal(t, "log-1", entry.ID)
	require.NotNil(t, entry.User)
	assert.Equal(t, "alice", entry.User.Username)
	assert.Equal(t, []string{"logUpdate"}, hub.events)
}

func TestAuditRecorder_Record_MissingActor(t *testing.T) {
	logs := new(MockLogRepository)
	users := new(MockUserRepository)
	hub := &fakeHub{}
	rec := NewAuditRecorder(logs, users, hub, zap.NewNop())

	_, err := rec.Record(context.Background(), "", model.ActionUpdate, model.Task{ID: "t1"})

	assert.ErrorIs(t, err, ErrMissingActor)
	logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	assert.Empty(t, hub.events)
}

func TestAuditRecorder_Record_ActorLookupIsBestEffort(t *testing.T) {
	logs := new(MockLogRepository)
	users := new(MockUserRepository)
	hub := &fakeHub{}
	rec := NewAuditRecorder(logs, users, hub, zap.NewNop())

	logs.On("Append", mock.Anything, mock.Anything).
		Return(model.ActionLog{ID: "log-1", UserID: "ghost", Action: model.ActionDelete}, nil)
	users.On("Get", mock.Anything, "ghost").Return(model.User{}, repo.ErrNotFound)

	entry, err := rec.Record(context.Background(), "ghost", model.ActionDelete, model.Task{ID: "t1"})

	require.NoError(t, err)
	assert.Nil(t, entry.User)
	assert.Equal(t, []string{"logUpdate"}, hub.events, "the push still happens without the populated actor")
}

func TestAuditRecorder_Recent_ClampsLimit(t *testing.T) {
	logs := new(MockLogRepository)
	users := new(MockUserRepository)
	rec := NewAuditRecorder(logs, users, &fakeHub{}, zap.NewNop())

	logs.On("Recent", mock.Anything, 20).Return([]model.ActionLog{}, nil).Times(2)

	_, err := rec.Recent(context.Background(), 0)
	require.NoError(t, err)
	_, err = rec.Recent(context.Background(), 500)
	require.NoError(t, err)
	logs.AssertExpectations(t)
}
