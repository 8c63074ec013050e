package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/config"
)

var errAlreadyRunning = errors.New("mirroring is already running; stop it first with 'dmr stop'")

// launchError turns a failed Launch RPC into the error the command exits with.
func launchError(err error) error {
	if grpcCode(err) == codes.FailedPrecondition {
		return errAlreadyRunning
	}
	return describe(err)
}

func newLaunchCmd(opts *globalOptions) *cobra.Command {
	var options lib.MirrorOptions

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Start mirroring the connected device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, opts, 30*time.Second, func(ctx context.Context, client apiv1.ControlServiceClient, _ config.Config) error {
				req, err := apiv1.LaunchRequest{Options: options}.Struct()
				if err != nil {
					return err
				}
				resp, err := client.Launch(ctx, req)
				if err != nil {
					return launchError(err)
				}
				st := apiv1.ParseState(resp)
				fmt.Printf("Mirroring started (pid %d)\n", st.Mirroring.Pid)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&options.BitRate, "bit-rate", "", "Video bit rate, e.g. 8M")
	cmd.Flags().IntVar(&options.MaxSize, "max-size", 0, "Limit both video dimensions to this value")
	cmd.Flags().StringVar(&options.Crop, "crop", "", "Crop the device screen, W:H:X:Y")
	cmd.Flags().StringVar(&options.RecordFile, "record", "", "Record the session to this file")
	cmd.Flags().StringVar(&options.Serial, "serial", "", "Device serial; defaults to the connected device")
	cmd.Flags().BoolVar(&options.ScreenOff, "screen-off", false, "Turn the device screen off while mirroring")
	return cmd
}

func newStopCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop mirroring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, opts, 30*time.Second, func(ctx context.Context, client apiv1.ControlServiceClient, _ config.Config) error {
				if _, err := client.Stop(ctx, nil); err != nil {
					return describe(err)
				}
				fmt.Println("Mirroring stopped")
				return nil
			})
		},
	}
}
