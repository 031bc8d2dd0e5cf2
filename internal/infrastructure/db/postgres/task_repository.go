package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nadscarim/task-management/internal/core/domain"
)

const taskColumns = `id, title, description, status, priority, due_date, user_id, created_at, updated_at, deleted_at`

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	t, err := scanTask(r.db.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Title, t.Description, string(t.Status), priorityArg(t.Priority), t.DueDate, t.UserID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update matches on id, owner and visibility in the same statement, so a
// foreign or deleted task is never touched.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	updated, err := scanTask(r.db.QueryRow(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, priority = $6, due_date = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING `+taskColumns,
		t.ID, t.UserID, t.Title, t.Description, string(t.Status), priorityArg(t.Priority), t.DueDate, t.UpdatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t         domain.Task
		status    string
		priority  *string
		dueDate   *time.Time
		deletedAt *time.Time
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &dueDate,
		&t.UserID, &t.CreatedAt, &t.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	if priority != nil {
		p := domain.TaskPriority(*priority)
		t.Priority = &p
	}
	t.DueDate = dueDate
	t.DeletedAt = deletedAt
	return &t, nil
}

func priorityArg(p *domain.TaskPriority) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}
