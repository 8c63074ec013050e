package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/config"
)

func newConnectCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect [ip] [port]",
		Short: "Connect to a device over the network",
		Long:  "Connect to a device over the network. Without arguments the configured default device is used.",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, 30*time.Second, func(ctx context.Context, client apiv1.ControlServiceClient, cfg config.Config) error {
				target := cfg.DefaultTarget()
				if len(args) > 0 {
					target.IP = args[0]
					target.Port = ""
				}
				if len(args) > 1 {
					target.Port = args[1]
				}
				if target.IP == "" {
					return fmt.Errorf("device IP is required; pass it as an argument or set device.ip")
				}

				req, err := apiv1.ConnectRequest{IP: target.IP, Port: target.Port}.Struct()
				if err != nil {
					return err
				}
				resp, err := client.Connect(ctx, req)
				if err != nil {
					return describe(err)
				}
				st := apiv1.ParseState(resp)
				fmt.Printf("Connected to %s\n", st.Connection.Target().Address())
				return nil
			})
		},
	}
	return cmd
}

func newDisconnectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect from the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, opts, 30*time.Second, func(ctx context.Context, client apiv1.ControlServiceClient, _ config.Config) error {
				if _, err := client.Disconnect(ctx, nil); err != nil {
					return describe(err)
				}
				fmt.Println("Disconnected")
				return nil
			})
		},
	}
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check whether the device is still connected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, opts, 30*time.Second, func(ctx context.Context, client apiv1.ControlServiceClient, _ config.Config) error {
				resp, err := client.CheckConnectivity(ctx, nil)
				if err != nil {
					return describe(err)
				}
				printState(apiv1.ParseCheckResponse(resp).State)
				return nil
			})
		},
	}
}

func newDevicesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices known to the device bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, opts, 30*time.Second, func(ctx context.Context, client apiv1.ControlServiceClient, _ config.Config) error {
				resp, err := client.Devices(ctx, nil)
				if err != nil {
					return describe(err)
				}
				printDevices(apiv1.ParseDevices(resp))
				return nil
			})
		},
	}
}
