package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nadscarim/task-management/internal/api/metrics"
	"github.com/nadscarim/task-management/internal/core/domain"
	"github.com/nadscarim/task-management/internal/core/ports"
)

// IdempotentReplayHeader is set on a create answered from an earlier request.
const IdempotentReplayHeader = "Idempotent-Replayed"

// TaskHandler handles HTTP requests for the caller's tasks.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /api/v1/tasks.
//
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {array}   taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/v1/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.List(c.Request().Context(), ownerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch tasks").SetInternal(err)
	}
	return c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// Get handles GET /api/v1/tasks/:id.
//
// @Summary      Get one of the caller's tasks
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), c.Param("id"), ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch task").SetInternal(err)
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Create handles POST /api/v1/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string       false  "Retries with the same key return the first result"
// @Param        body             body      taskRequest  true   "Task"
// @Success      201              {object}  taskResponse
// @Success      200              {object}  taskResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /api/v1/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}

	fields, err := bindTask(c)
	if err != nil {
		return err
	}

	result, err := h.service.Create(c.Request().Context(), ports.CreateTaskInput{
		OwnerID:        ownerID,
		TaskFields:     fields,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTask) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create task").SetInternal(err)
	}

	if result.AlreadyExisted {
		metrics.TaskIdempotentReplaysTotal.Inc()
		c.Response().Header().Set(IdempotentReplayHeader, "true")
		return c.JSON(http.StatusOK, toTaskResponse(result.Task))
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(result.Task.Status)).Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(result.Task))
}

// Update handles PUT /api/v1/tasks/:id. The body replaces every writable field.
//
// @Summary      Replace one of the caller's tasks
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Task id"
// @Param        body  body      taskRequest  true  "Task"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}

	fields, err := bindTask(c)
	if err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), ports.UpdateTaskInput{
		ID:         c.Param("id"),
		OwnerID:    ownerID,
		TaskFields: fields,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		case errors.Is(err, domain.ErrInvalidTask):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update task").SetInternal(err)
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

func bindTask(c echo.Context) (ports.TaskFields, error) {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return ports.TaskFields{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.TaskFields{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fields, err := toTaskFields(req)
	if err != nil {
		return ports.TaskFields{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return fields, nil
}
