package main

import (
	"github.com/spf13/cobra"

	"github.com/M4dhxv/Financial-Analysis/internal/artifact"
	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
)

func newDetectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Print the detected schema of a file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := opts.loadThresholds()
			if err != nil {
				return err
			}
			tbl, err := dataset.Open(args[0], opts.sheet)
			if err != nil {
				return err
			}
			res, err := schema.Detect(tbl, th)
			if err != nil {
				return describe(err)
			}
			return artifact.WriteJSON(cmd.OutOrStdout(), res)
		},
	}
}
