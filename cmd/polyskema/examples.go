package main

import (
	"github.com/spf13/cobra"
)

func newExamplesCmd(f *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "examples [search]",
		Short: "Print zero-argument example documents of matching classes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, c, err := f.setup(cmd)
			if err != nil {
				return err
			}
			reg, err := c.Build(ctx)
			if err != nil {
				return err
			}
			search := ""
			if len(args) == 1 {
				search = args[0]
			}
			ex, err := reg.Examples(ctx, search)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), ex, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or yaml")
	return cmd
}
