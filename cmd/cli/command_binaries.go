package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/config"
)

func newBinariesCmd(opts *globalOptions) *cobra.Command {
	var req apiv1.BinariesRequest

	cmd := &cobra.Command{
		Use:   "binaries",
		Short: "Show where adb and scrcpy were found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			timeout := 10 * time.Second
			if req.Fetch {
				timeout = 10 * time.Minute
			}
			return withClient(cmd, opts, timeout, func(ctx context.Context, client apiv1.ControlServiceClient, _ config.Config) error {
				in, err := req.Struct()
				if err != nil {
					return err
				}
				resp, err := client.Binaries(ctx, in)
				if err != nil {
					return describe(err)
				}
				results := apiv1.ParseBinaries(resp)
				printBinaries(results)
				for _, r := range results {
					if !r.Found {
						return errors.New("some binaries are missing; configure their paths or run with --fetch")
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&req.Refresh, "refresh", false, "Forget cached detection results and probe again")
	cmd.Flags().BoolVar(&req.Fetch, "fetch", false, "Download missing binaries")
	return cmd
}
