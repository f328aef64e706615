package tests

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/collabboard/board-api/internal/model"
	"github.com/collabboard/board-api/internal/repo"
	"github.com/collabboard/board-api/internal/service"
)

// SetupTestDB spins up a disposable Postgres with the schema applied.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filename))
	migrationsPath := filepath.Join(projectRoot, "migrations")

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithInitScripts(filepath.Join(migrationsPath, "001_init.up.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// TruncateTables clears all board state.
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE action_logs, tasks, users CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SeedUser inserts a user directly and returns its id.
func SeedUser(t *testing.T, pool *pgxpool.Pool, username string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, 'x')
	`, id, username, fmt.Sprintf("%s@example.com", username))
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return id
}

// SeedTask inserts a task directly and returns its id.
func SeedTask(t *testing.T, pool *pgxpool.Pool, title string, status model.Status, assignedUser *string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO tasks (id, title, status, priority, assigned_user)
		VALUES ($1, $2, $3, $4, $5)
	`, id, title, status, model.PriorityMedium, assignedUser)
	if err != nil {
		t.Fatalf("Failed to seed task: %v", err)
	}
	return id
}

// WaitForCondition polls until the condition holds or the timeout elapses.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

// RecorderHub is a Broadcaster that remembers every event in emit order.
type RecorderHub struct {
	mu     sync.Mutex
	Events []string
	Tasks  []model.Task
	Logs   []model.ActionLog
}

func (h *RecorderHub) BroadcastTask(t model.Task) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, "taskUpdate")
	h.Tasks = append(h.Tasks, t)
}

func (h *RecorderHub) BroadcastLog(entry model.ActionLog) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, "logUpdate")
	h.Logs = append(h.Logs, entry)
}

func (h *RecorderHub) Snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.Events...)
}

// NewBoardService wires the full service stack over a database pool.
func NewBoardService(pool *pgxpool.Pool, hub service.Broadcaster) (*service.TaskService, *service.AuditRecorder) {
	taskRepo := repo.NewTaskRepo(pool)
	logRepo := repo.NewLogRepo(pool)
	userRepo := repo.NewUserRepo(pool)
	logger := zap.NewNop()

	selector := service.NewSelector(userRepo, taskRepo)
	audit := service.NewAuditRecorder(logRepo, userRepo, hub, logger)
	return service.NewTaskService(taskRepo, selector, audit, hub, logger), audit
}
