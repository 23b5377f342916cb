package main

import (
	"agent-console/internal/httpapi"
	"agent-console/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		v1.GET("/me", h.Me)
		v1.POST("/auth/logout", h.Logout)

		// AGENT console routes
		console := v1.Group("/session")
		console.Use(rbac.RequireAnyRole(rbac.RoleAgent))
		{
			console.GET("", h.SessionView)
			console.POST("/status", h.SetStatus)
			console.POST("/calls/answer", h.AnswerCall)
			console.POST("/calls/decline", h.DeclineCall)
			console.POST("/calls/end", h.EndCall)
			console.POST("/calls/outbound", h.PlaceOutbound)
			console.GET("/calls/recent", h.RecentCalls)
		}

		// ADMIN routes
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			admin.POST("/employees", h.CreateEmployee)
			admin.GET("/employees", h.ListEmployees)
			admin.GET("/employees/:id", h.GetEmployee)
			admin.PATCH("/employees/:id", h.UpdateEmployee)
			admin.DELETE("/employees/:id", h.DeleteEmployee)
			admin.GET("/employees/:id/summary", h.AgentSummary)

			admin.GET("/presence", h.PresenceBoard)
		}
	}
}
