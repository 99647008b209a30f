// Package automation is the one-shot job behind the run command: load the
// workflows in one status and print them.
package automation

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/deppfellow/oracle-automation/internal/database"
	"github.com/deppfellow/oracle-automation/internal/lib/utils"
)

// DefaultStatus is used when no status is given.
const DefaultStatus = "FINISHED"

// WorkflowLister is satisfied by *service.WorkflowService.
type WorkflowLister interface {
	ByStatus(ctx context.Context, status string) ([]database.Row, error)
}

type Framework struct {
	Status    string
	Workflows WorkflowLister
	Out       io.Writer
	Logger    *zerolog.Logger
}

// New returns a Framework writing to stdout. An empty status falls back to
// DefaultStatus.
func New(status string, workflows WorkflowLister, logger *zerolog.Logger) *Framework {
	if status == "" {
		status = DefaultStatus
	}
	return &Framework{
		Status:    status,
		Workflows: workflows,
		Out:       os.Stdout,
		Logger:    logger,
	}
}

// Run loads the workflows in f.Status, writes them to f.Out as JSON and
// returns them.
func (f *Framework) Run(ctx context.Context) ([]database.Row, error) {
	rows, err := f.Workflows.ByStatus(ctx, f.Status)
	if err != nil {
		return nil, err
	}

	if err := utils.WriteJSON(f.Out, rows); err != nil {
		return nil, err
	}

	if f.Logger != nil {
		f.Logger.Info().
			Str("status", f.Status).
			Int("count", len(rows)).
			Msg("automation run finished")
	}

	return rows, nil
}
