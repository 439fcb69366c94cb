package router

import (
	"github.com/labstack/echo/v4"

	"github.com/aslboq/catering-backend/internal/handler"
	"github.com/aslboq/catering-backend/internal/middleware"
	"github.com/aslboq/catering-backend/internal/model"
)

// RegisterBOQ registers bill-of-quantity CRUD and the approval workflow.
// CRUD and submit/publish are open to every role; role checks for approve
// and reject live in the workflow itself so the audit path has a single
// gatekeeper. The approval-queue route carries the role middleware as a
// first gate; the workflow enforces it again.
func RegisterBOQ(e *echo.Echo, b *handler.BOQHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/boqs", b.Create)
	g.GET("/boqs", b.List)
	g.GET("/boqs/approval-queue", b.ApprovalQueue,
		middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin))
	g.GET("/boqs/:id", b.Get)
	g.PUT("/boqs/:id", b.Update)
	g.PATCH("/boqs/:id", b.Update)
	g.DELETE("/boqs/:id", b.Delete)

	g.POST("/boqs/:id/submit", b.Submit)
	g.POST("/boqs/:id/approve", b.Approve)
	g.POST("/boqs/:id/reject", b.Reject)
	g.POST("/boqs/:id/publish", b.Publish)
	g.GET("/boqs/:id/approvals", b.History)
}

// RegisterEmail registers the direct mail endpoint, admin only.
func RegisterEmail(e *echo.Echo, h *handler.EmailHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/email/send", h.Send)
}
