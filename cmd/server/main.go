package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/devmirror/pkg/lib/config"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/engine"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logging.New("devmirrord")
	defer log.Flush()

	root := newRootCmd(log)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Flush()
		os.Exit(1)
	}
}

func newRootCmd(log *logging.Logger) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "devmirrord",
		Short:         "Device mirroring daemon",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to the configuration file")
	cmd.Flags().String("address", "", "Listen address, unix:///path/to.sock or host:port")
	cmd.Flags().String("adb-path", "", "Path to the adb binary")
	cmd.Flags().String("scrcpy-path", "", "Path to the scrcpy binary")
	cmd.Flags().String("ip", "", "Default device IP address")
	cmd.Flags().String("port", "", "Default device port")
	log.AddLevelFlag(cmd.Flags())

	return cmd
}

func run(ctx context.Context, cfg config.Config, log *logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []engine.Option
	if ac, ok := cfg.Acquirer(); ok {
		opts = append(opts, engine.WithAcquirer(ac))
	}
	eng := engine.New(cfg, logging.NewNotifier(log.WithName("notify")), log.Logger, opts...)

	srv, err := NewGRPCServer(cfg.Server.Address, NewControlServiceServer(eng, cfg.Device.Port, log.Logger), log.Logger)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve()
	}()
	log.Info("listening", "address", srv.Addr().String())

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-serveErr:
		log.Error(err, "server stopped unexpectedly")
	}
	srv.Stop()

	cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if cleanupErr := eng.Cleanup(cleanupCtx); cleanupErr != nil {
		err = errors.Join(err, cleanupErr)
	}
	return err
}
