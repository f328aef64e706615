package service

import (
	"context"

	"github.com/collabboard/board-api/internal/repo"
)

// Selector picks the user to auto-assign: the one with the fewest tasks not
// yet Done. Users are enumerated in the store's stable order (registration
// time, then id), and on a tie the first one encountered wins.
type Selector struct {
	users repo.UserRepository
	tasks repo.TaskRepository
}

func NewSelector(users repo.UserRepository, tasks repo.TaskRepository) *Selector {
	return &Selector{users: users, tasks: tasks}
}

func (s *Selector) LeastLoaded(ctx context.Context) (string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", ErrNoEligibleUsers
	}

	var (
		bestID    string
		bestCount int
	)
	for i, u := range users {
		count, err := s.tasks.CountActive(ctx, u.ID)
		if err != nil {
			return "", err
		}
		if i == 0 || count < bestCount {
			bestID = u.ID
			bestCount = count
		}
	}
	return bestID, nil
}
