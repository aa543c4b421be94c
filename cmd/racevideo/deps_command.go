package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDepsCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Show which external tools and credentials were found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.ensure(); err != nil {
				return err
			}
			rows := [][]string{}
			for _, s := range c.caps.List() {
				detail := s.Detail
				if detail == "" {
					detail = s.Command
				}
				rows = append(rows, []string{s.Name, yesNo(s.Available), detail})
			}
			engine := c.caps.SpeechEngine
			if engine == "" {
				engine = "none"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Available", "Detail"}, rows, nil))
			fmt.Fprintf(out, "Speech engine: %s\n", engine)
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
