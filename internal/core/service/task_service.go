package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nadscarim/task-management/internal/core/domain"
	"github.com/nadscarim/task-management/internal/core/ports"
)

// TaskService implements owner-scoped task CRUD.
type TaskService struct {
	repo ports.TaskRepository
	idem ports.IdempotencyStore // optional
	log  zerolog.Logger
	now  func() time.Time
}

// NewTaskService returns a TaskService. idem may be nil, in which case
// idempotency keys are ignored.
func NewTaskService(repo ports.TaskRepository, idem ports.IdempotencyStore, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, idem: idem, log: log, now: time.Now}
}

func (s *TaskService) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	tasks, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	if !validID(id) {
		return nil, domain.ErrTaskNotFound
	}
	return s.repo.FindByID(ctx, id, ownerID)
}

// Create stores a new task for in.OwnerID. When an idempotency key is given and
// already seen for this owner, the earlier task is returned without side effects.
func (s *TaskService) Create(ctx context.Context, in ports.CreateTaskInput) (*ports.TaskResult, error) {
	if err := validateFields(in.TaskFields); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if existing := s.replay(ctx, in.OwnerID, in.IdempotencyKey); existing != nil {
			return &ports.TaskResult{Task: existing, AlreadyExisted: true}, nil
		}
	}

	now := s.now().UTC()
	task := &domain.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     utcPtr(in.DueDate),
		UserID:      in.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, in.OwnerID, in.IdempotencyKey, task.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to remember idempotency key")
		}
	}

	s.log.Info().Str("task_id", task.ID).Str("user_id", in.OwnerID).Msg("task created")
	return &ports.TaskResult{Task: task}, nil
}

// Update replaces title, description, status, priority and due date of the
// owner's task. Absent optional fields are cleared.
func (s *TaskService) Update(ctx context.Context, in ports.UpdateTaskInput) (*domain.Task, error) {
	if !validID(in.ID) {
		return nil, domain.ErrTaskNotFound
	}
	if err := validateFields(in.TaskFields); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Task{
		ID:          in.ID,
		UserID:      in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     utcPtr(in.DueDate),
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// replay returns the task remembered for key, or nil when there is none or the
// lookup fails (the create then proceeds normally).
func (s *TaskService) replay(ctx context.Context, ownerID, key string) *domain.Task {
	taskID, found, err := s.idem.Lookup(ctx, ownerID, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}
	existing, err := s.repo.FindByID(ctx, taskID, ownerID)
	if err != nil {
		s.log.Warn().Err(err).Str("task_id", taskID).Msg("idempotent task no longer readable")
		return nil
	}
	s.log.Info().Str("idempotency_key", key).Str("task_id", taskID).Msg("idempotent replay")
	return existing
}

func validateFields(f ports.TaskFields) error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidTask)
	}
	if !f.Status.Valid() {
		return fmt.Errorf("%w: status %q is not valid", domain.ErrInvalidTask, f.Status)
	}
	if f.Priority != nil && !f.Priority.Valid() {
		return fmt.Errorf("%w: priority %q is not valid", domain.ErrInvalidTask, *f.Priority)
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
