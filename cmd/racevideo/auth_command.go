package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"race-video-pipeline/internal/failure"
)

func newAuthCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize uploads and store the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.ensure(); err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			tok, _, err := c.authenticator().Token(ctx)
			if err != nil {
				return failure.Wrap(failure.ErrAuthentication, "auth", "authorize", "", err)
			}
			expiry := "never"
			if !tok.Expiry.IsZero() {
				expiry = tok.Expiry.Local().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token stored at %s (expires %s)\n", c.cfg.Paths.Token, expiry)
			return nil
		},
	}
}
