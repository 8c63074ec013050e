package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/config"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show connection and mirroring state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, opts, 10*time.Second, func(ctx context.Context, client apiv1.ControlServiceClient, _ config.Config) error {
				resp, err := client.GetState(ctx, nil)
				if err != nil {
					return describe(err)
				}
				printState(apiv1.ParseState(resp))
				return nil
			})
		},
	}
	return cmd
}
