package handler

import (
	"bytes"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/oracle-automation/internal/database"
	"github.com/deppfellow/oracle-automation/internal/lib/utils"
	"github.com/deppfellow/oracle-automation/internal/server"
	"github.com/deppfellow/oracle-automation/internal/service"
	"github.com/deppfellow/oracle-automation/internal/validation"
)

// ListWorkflowsRequest selects workflows by status. An empty status means
// automation.default_status.
type ListWorkflowsRequest struct {
	Status string `query:"status" validate:"omitempty,max=32,printascii"`
}

func (r *ListWorkflowsRequest) Validate() error {
	return validation.Struct(r)
}

type WorkflowsByPeriodRequest struct {
	Month int `query:"month" validate:"required,min=1,max=12"`
	Year  int `query:"year" validate:"required,min=1"`
}

func (r *WorkflowsByPeriodRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateWorkflowStatusRequest struct {
	ID     int64  `param:"id" json:"-" validate:"required,min=1"`
	Status string `json:"status" validate:"required,max=32,printascii"`
}

func (r *UpdateWorkflowStatusRequest) Validate() error {
	return validation.Struct(r)
}

type WorkflowsResponse struct {
	Workflows []database.Row `json:"workflows"`
	Count     int            `json:"count"`
}

func (r WorkflowsResponse) Len() int {
	return r.Count
}

type WorkflowHandler struct {
	Handler
	workflows *service.WorkflowService
}

func NewWorkflowHandler(s *server.Server, workflows *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{
		Handler:   NewHandler(s),
		workflows: workflows,
	}
}

func (h *WorkflowHandler) status(req *ListWorkflowsRequest) string {
	if req.Status == "" {
		return h.server.Config.Automation.DefaultStatus
	}
	return req.Status
}

// ListByStatus serves GET /api/v1/workflows?status=.
func (h *WorkflowHandler) ListByStatus(c echo.Context, req *ListWorkflowsRequest) (WorkflowsResponse, error) {
	rows, err := h.workflows.ByStatus(c.Request().Context(), h.status(req))
	if err != nil {
		return WorkflowsResponse{}, err
	}
	return WorkflowsResponse{Workflows: rows, Count: len(rows)}, nil
}

// ListByPeriod serves GET /api/v1/workflows/period?month=&year=.
func (h *WorkflowHandler) ListByPeriod(c echo.Context, req *WorkflowsByPeriodRequest) (WorkflowsResponse, error) {
	rows, err := h.workflows.ByPeriod(c.Request().Context(), req.Month, req.Year)
	if err != nil {
		return WorkflowsResponse{}, err
	}
	return WorkflowsResponse{Workflows: rows, Count: len(rows)}, nil
}

// Export serves GET /api/v1/workflows/export?status= as a JSON download.
func (h *WorkflowHandler) Export(c echo.Context, req *ListWorkflowsRequest) ([]byte, error) {
	rows, err := h.workflows.ByStatus(c.Request().Context(), h.status(req))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := utils.WriteJSON(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UpdateStatus serves PATCH /api/v1/workflows/:id/status.
func (h *WorkflowHandler) UpdateStatus(c echo.Context, req *UpdateWorkflowStatusRequest) error {
	return h.workflows.UpdateStatus(c.Request().Context(), req.ID, req.Status)
}
