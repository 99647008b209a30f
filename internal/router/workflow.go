package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/oracle-automation/internal/handler"
)

func registerWorkflowRoutes(g *echo.Group, h *handler.Handlers) {
	workflows := g.Group("/workflows")
	wh := h.Workflow

	workflows.GET("", handler.Handle(wh.Handler, wh.ListByStatus, http.StatusOK, &handler.ListWorkflowsRequest{}))
	workflows.GET("/period", handler.Handle(wh.Handler, wh.ListByPeriod, http.StatusOK, &handler.WorkflowsByPeriodRequest{}))
	workflows.GET("/export", handler.HandleFile(wh.Handler, wh.Export, http.StatusOK,
		&handler.ListWorkflowsRequest{}, "workflows.json", echo.MIMEApplicationJSON))
	workflows.PATCH("/:id/status", handler.HandleNoContent(wh.Handler, wh.UpdateStatus, http.StatusNoContent,
		&handler.UpdateWorkflowStatusRequest{}))
}
