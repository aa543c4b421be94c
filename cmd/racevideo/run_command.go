package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var timeNow = time.Now

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runPipeline(cmd *cobra.Command, c *commandContext) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	d, err := c.driver(ctx)
	if err != nil {
		return err
	}
	state, err := d.RunToday(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Video: %s\n", state.VideoFile)
	switch {
	case state.Uploaded():
		fmt.Fprintf(out, "Uploaded: %s\n", state.Upload.URL)
	case state.UploadError != "":
		fmt.Fprintf(out, "Upload failed, video kept locally: %s\n", state.UploadError)
	}
	return nil
}
