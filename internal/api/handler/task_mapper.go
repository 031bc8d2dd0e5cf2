package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/nadscarim/task-management/internal/core/domain"
	"github.com/nadscarim/task-management/internal/core/ports"
)

const dateOnly = "2006-01-02"

var errInvalidDueDate = errors.New("dueDate must be an RFC 3339 timestamp or a YYYY-MM-DD date")

// --- Request → Service input ---

func toTaskFields(req taskRequest) (ports.TaskFields, error) {
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return ports.TaskFields{}, err
	}

	fields := ports.TaskFields{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		DueDate:     due,
	}
	if req.Priority != nil && *req.Priority != "" {
		p := domain.TaskPriority(*req.Priority)
		fields.Priority = &p
	}
	return fields, nil
}

// parseDueDate treats null, "" and absence alike.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339Nano, dateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errInvalidDueDate
}

// --- Service result → HTTP response ---

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		DeletedAt:   t.DeletedAt,
	}
	if t.Priority != nil {
		p := string(*t.Priority)
		resp.Priority = &p
	}
	return resp
}

func toTaskListResponse(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}
