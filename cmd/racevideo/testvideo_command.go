package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const testVideoSeconds = 5

func newTestVideoCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "testvideo",
		Short: "Render a five-second silent test video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			d, err := c.driver(ctx)
			if err != nil {
				return err
			}
			path, err := d.TestVideo(ctx, testVideoSeconds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test video: %s\n", path)
			return nil
		},
	}
}
