package main

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/hupe1980/learnedbench"
)

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "list the index kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := tablewriter.NewWriter(cmd.OutOrStdout())
			t.SetAutoFormatHeaders(false)
			t.SetBorder(false)
			t.SetHeader([]string{"kind", "family"})
			for _, k := range learnedbench.Kinds() {
				family := "baseline"
				if k.Learned() {
					family = "learned"
				}
				t.Append([]string{string(k), family})
			}
			t.Render()
			return nil
		},
	}
}
