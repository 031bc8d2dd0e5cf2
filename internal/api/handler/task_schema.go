package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

// taskRequest is the body of both create and update. Update is a full
// replace, so omitted optional fields are cleared. DueDate accepts an
// RFC 3339 timestamp or a YYYY-MM-DD date.
type taskRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"      validate:"required,oneof=TODO IN_PROGRESS DONE CANCELLED"`
	Priority    *string `json:"priority"    validate:"omitempty,taskpriority"`
	DueDate     *string `json:"dueDate"     validate:"omitempty,duedate"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}
