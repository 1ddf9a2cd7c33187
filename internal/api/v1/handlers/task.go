package handlers

import (
	"errors"
	"strconv"
	"time"

	"taskman/internal/cache"
	"taskman/internal/middleware"
	"taskman/internal/models"
	"taskman/internal/repository"
	ws "taskman/internal/websocket"
	"taskman/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TaskHandler composes the auth guard's resolved identity with the
// owner-scoped task repository. Every operation here receives the
// owner from locals, never from the request body.
type TaskHandler struct {
	tasks *repository.TaskRepository
	cache *cache.TaskCache
	hub   *ws.Hub
}

func NewTaskHandler(tasks *repository.TaskRepository, taskCache *cache.TaskCache, hub *ws.Hub) *TaskHandler {
	return &TaskHandler{tasks: tasks, cache: taskCache, hub: hub}
}

func currentUser(c *fiber.Ctx) models.User {
	return c.Locals(middleware.CurrentUserKey).(models.User)
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	user := currentUser(c)

	type TaskRequest struct {
		Title       string     `json:"title" validate:"required"`
		Description *string    `json:"description"`
		Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	task, err := h.tasks.Create(user.ID, repository.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error creating task",
			"success": false,
			"status":  500,
		})
	}

	h.hub.Notify("created", task)
	logger.AuditLogger.Info("Task created successfully", zap.Int("task_id", task.ID), zap.Int("owner_id", user.ID))
	return c.JSON(fiber.Map{
		"message": "Task created successfully",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	user := currentUser(c)

	var filter repository.TaskFilter
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{
				"message": "Invalid completed filter",
				"success": false,
				"status":  400,
			})
		}
		filter.Completed = &completed
	}
	filter.Priority = c.Query("priority")

	tasks, err := h.tasks.List(user.ID, filter)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching tasks",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Tasks fetched successfully", zap.Int("owner_id", user.ID), zap.Int("count", len(tasks)))
	return c.JSON(fiber.Map{
		"message": "Tasks fetched successfully",
		"success": true,
		"status":  200,
		"data":    tasks,
	})
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid task ID",
			"success": false,
			"status":  400,
		})
	}

	// Try the cache first. Ownership is still checked on a hit, and a
	// foreign task looks exactly like a missing one.
	if h.cache != nil {
		if task, ok := h.cache.Get(c.UserContext(), taskID); ok {
			if task.OwnerID != user.ID {
				return taskNotFound(c)
			}
			logger.AuditLogger.Info("Task found (from cache)", zap.Int("task_id", taskID))
			return c.JSON(fiber.Map{
				"message": "Task found (from cache)",
				"success": true,
				"status":  200,
				"data":    task,
			})
		}
	}

	task, err := h.tasks.GetByID(user.ID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return taskNotFound(c)
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching task",
			"success": false,
			"status":  500,
		})
	}

	if h.cache != nil {
		h.cache.Set(c.UserContext(), task)
	}

	logger.AuditLogger.Info("Task found", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task found",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid task ID",
			"success": false,
			"status":  400,
		})
	}

	// Pointer fields: nil means the field was not in the body and must
	// keep its stored value.
	type UpdateTaskRequest struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
		DueDate     *time.Time `json:"due_date"`
		Completed   *bool      `json:"completed"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in update task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	task, err := h.tasks.Update(user.ID, taskID, repository.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	})
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return taskNotFound(c)
		}
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error updating task",
			"success": false,
			"status":  500,
		})
	}

	if h.cache != nil {
		h.cache.Invalidate(c.UserContext(), taskID)
		h.cache.Set(c.UserContext(), task)
	}
	h.hub.Notify("updated", task)

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task updated successfully",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid task ID",
			"success": false,
			"status":  400,
		})
	}

	// Fetch the owned row first so the event carries the deleted task.
	task, err := h.tasks.GetByID(user.ID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return taskNotFound(c)
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching task",
			"success": false,
			"status":  500,
		})
	}

	if err := h.tasks.Delete(user.ID, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return taskNotFound(c)
		}
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error deleting task",
			"success": false,
			"status":  500,
		})
	}

	if h.cache != nil {
		h.cache.Invalidate(c.UserContext(), taskID)
	}
	h.hub.Notify("deleted", task)

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task deleted successfully",
		"success": true,
		"status":  200,
	})
}

func (h *TaskHandler) ToggleComplete(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid task ID",
			"success": false,
			"status":  400,
		})
	}

	task, err := h.tasks.ToggleCompletion(user.ID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return taskNotFound(c)
		}
		logger.ErrorLogger.Error("Error toggling task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error toggling task",
			"success": false,
			"status":  500,
		})
	}

	if h.cache != nil {
		h.cache.Invalidate(c.UserContext(), taskID)
		h.cache.Set(c.UserContext(), task)
	}
	h.hub.Notify("toggled", task)

	logger.AuditLogger.Info("Task completion toggled", zap.Int("task_id", taskID), zap.Bool("completed", task.Completed))
	return c.JSON(fiber.Map{
		"message": "Task updated successfully",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

func taskNotFound(c *fiber.Ctx) error {
	return c.Status(404).JSON(fiber.Map{
		"message": "Task not found",
		"success": false,
		"status":  404,
	})
}
