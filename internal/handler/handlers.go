package handler

import (
	"github.com/deppfellow/oracle-automation/internal/server"
	"github.com/deppfellow/oracle-automation/internal/service"
)

type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Workflow *WorkflowHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Workflow: NewWorkflowHandler(s, services.Workflow),
	}
}
