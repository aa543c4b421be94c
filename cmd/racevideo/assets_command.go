package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"race-video-pipeline/internal/assets"
)

func newAssetsCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "List generated artifacts by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.ensure(); err != nil {
				return err
			}
			entries, err := c.store().List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No artifacts yet")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Date,
					sizeCell(e, assets.KindAudio),
					sizeCell(e, assets.KindImage),
					sizeCell(e, assets.KindVideo),
				})
			}
			headers := []string{"Date", "Audio", "Image", "Video"}
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
			return nil
		},
	}
}

func sizeCell(e assets.Entry, k assets.Kind) string {
	if !e.Has(k) {
		return "-"
	}
	return humanSize(e.Sizes[k])
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
