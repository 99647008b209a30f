package service

import (
	"github.com/deppfellow/oracle-automation/internal/repository"
	"github.com/deppfellow/oracle-automation/internal/server"
)

type Services struct {
	Workflow *WorkflowService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Workflow: NewWorkflowService(s, repos.Workflow),
	}, nil
}
