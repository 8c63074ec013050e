package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/config"
)

type globalOptions struct {
	configFile string
}

func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "dmr",
		Short:         "Device mirroring CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to the configuration file")
	root.PersistentFlags().String("address", "", "Daemon address, unix:///path/to.sock or host:port")

	root.AddCommand(newConnectCmd(opts))
	root.AddCommand(newDisconnectCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newDevicesCmd(opts))
	root.AddCommand(newLaunchCmd(opts))
	root.AddCommand(newStopCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newBinariesCmd(opts))

	return root
}

// withClient loads the configuration, dials the daemon and runs fn with a
// bounded context.
func withClient(cmd *cobra.Command, opts *globalOptions, timeout time.Duration, fn func(context.Context, apiv1.ControlServiceClient, config.Config) error) error {
	cfg, err := config.Load(opts.configFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	conn, err := dial(cfg.Server.Address)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, apiv1.NewControlServiceClient(conn), cfg)
}
