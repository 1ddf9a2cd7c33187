package v1

import (
	"taskman/internal/api/v1/handlers"

	"github.com/gofiber/fiber/v2"
)

// Router bundles the constructed handlers and the auth guard so the
// same route table serves both main and the test harness.
type Router struct {
	Auth   *handlers.AuthHandler
	Tasks  *handlers.TaskHandler
	Health *handlers.HealthHandler
	Guard  fiber.Handler
}

func (r *Router) Register(app *fiber.App) {
	app.Get("/", r.Health.Root)
	app.Get("/health", r.Health.Check)

	api := app.Group("/api/v1")

	// Auth
	api.Post("/register", r.Auth.Register)
	api.Post("/login", r.Auth.Login)

	// Task, every route behind the guard
	taskRoutes := api.Group("/tasks", r.Guard)
	taskRoutes.Post("/", r.Tasks.Create)
	taskRoutes.Get("/", r.Tasks.List)
	taskRoutes.Get("/:id", r.Tasks.Get)
	taskRoutes.Put("/:id", r.Tasks.Update)
	taskRoutes.Delete("/:id", r.Tasks.Delete)
	taskRoutes.Patch("/:id/complete", r.Tasks.ToggleComplete)
}
