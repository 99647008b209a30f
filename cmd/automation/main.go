package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/deppfellow/oracle-automation/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()

		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Fatal().Stack().Err(errors.Wrap(err, "automation")).Msg("command failed")
	}
}
