package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/oracle-automation/internal/handler"
	"github.com/deppfellow/oracle-automation/internal/router"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the workflow HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, services, err := a.services()
			if err != nil {
				return err
			}

			handlers := handler.NewHandlers(srv, services)
			r := router.NewRouter(srv, handlers)
			srv.SetupHTTPServer(r)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			ctx := cmd.Context()
			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					a.logger.Error().Err(err).Msg("server stopped unexpectedly")
					_ = srv.DB.Close()
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}

			a.logger.Info().Msg("server exited properly")
			return nil
		},
	}
}
