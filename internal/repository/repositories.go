package repository

import (
	"github.com/deppfellow/oracle-automation/internal/server"
)

// Repositories is the container handed to the service layer.
type Repositories struct {
	Workflow *WorkflowRepository
}

// NewRepositories builds every repository against the configured schema.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Workflow: NewWorkflowRepository(s.Config.Database.Schema),
	}
}
