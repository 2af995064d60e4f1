package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/iliyamo/envirowatch/internal/queue"
)

const amqpURLFlag = "amqp-url"

var workerFlags = map[string]cobraflags.Flag{
	amqpURLFlag: &cobraflags.StringFlag{
		Name:  amqpURLFlag,
		Value: "",
		Usage: "Broker URL, overrides AMQP_URL",
	},
}

func newWorkerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume record events and log environmental alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadApp()
			if err != nil {
				return err
			}
			defer rt.close()

			url := workerFlags[amqpURLFlag].GetString()
			if url == "" {
				url = rt.cfg.AMQPURL
			}
			if url == "" {
				return errors.New("no broker configured: set AMQP_URL or --amqp-url")
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = queue.StartAlertConsumer(ctx, url, rt.log.Named("worker"))
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cobraflags.RegisterMap(cmd, workerFlags)
	return cmd
}
