package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/dayplan/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	// Bucket queries
	r.GET("/api/v1/tasks/unscheduled", authMiddleware(handlers.Task.GetUnscheduled))
	r.GET("/api/v1/tasks/today", authMiddleware(handlers.Task.GetTodayAndOverdue))
	r.GET("/api/v1/tasks/upcoming", authMiddleware(handlers.Task.GetUpcoming))
	r.GET("/api/v1/tasks/completed", authMiddleware(handlers.Task.GetCompleted))
	r.GET("/api/v1/tasks/watch", authMiddleware(handlers.Task.Watch))

	// Mutations
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.Create))
	r.POST("/api/v1/tasks/parse", authMiddleware(handlers.Task.Parse))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Update))
	r.POST("/api/v1/tasks/{id}/complete", authMiddleware(handlers.Task.Complete))
	r.POST("/api/v1/tasks/{id}/uncomplete", authMiddleware(handlers.Task.Uncomplete))
	r.POST("/api/v1/tasks/{id}/today", authMiddleware(handlers.Task.MoveToToday))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Delete))

	return r
}
