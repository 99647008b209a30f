// Package cli wires the automation commands on top of cobra.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/oracle-automation/internal/config"
	loggerPkg "github.com/deppfellow/oracle-automation/internal/logger"
	"github.com/deppfellow/oracle-automation/internal/repository"
	"github.com/deppfellow/oracle-automation/internal/server"
	"github.com/deppfellow/oracle-automation/internal/service"
)

// app is the state shared by the subcommands. It is filled once by the
// root's PersistentPreRunE.
type app struct {
	cfg           *config.Config
	logger        *zerolog.Logger
	loggerService *loggerPkg.LoggerService
}

// NewRootCmd builds the top-level `automation` command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "automation",
		Short:         "Workflow automation against the workflows table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.loggerService.Shutdown()
		},
	}

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newReportCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newMigrateCmd(a))
	root.AddCommand(NewVersionCmd())
	return root
}

// load reads the configuration and builds the logger. Logs go to stderr so
// stdout only ever carries command output.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loggerService, err := loggerPkg.NewLoggerService(cfg.Observability)
	if err != nil {
		return err
	}

	log := loggerPkg.NewLoggerWithWriter(cfg.Observability, loggerService, cmd.ErrOrStderr())

	a.cfg = cfg
	a.logger = &log
	a.loggerService = loggerService
	return nil
}

// services opens the database and builds the service layer on top of it.
// The caller closes the returned server's database.
func (a *app) services() (*server.Server, *service.Services, error) {
	srv, err := server.New(a.cfg, a.logger, a.loggerService)
	if err != nil {
		return nil, nil, err
	}

	services, err := service.NewService(srv, repository.NewRepositories(srv))
	if err != nil {
		_ = srv.DB.Close()
		return nil, nil, fmt.Errorf("could not create services: %w", err)
	}

	return srv, services, nil
}
