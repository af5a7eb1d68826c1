package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reoring/polyskema/registry"
)

func newClassesCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "classes [search]",
		Short: "List discovered classes in walk order with their registration state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, c, err := f.setup(cmd)
			if err != nil {
				return err
			}
			reg, err := c.Build(ctx)
			if err != nil {
				var ee *registry.EmptyRegistryError
				if errors.As(err, &ee) {
					printDiagnostics(cmd, ee.Diagnostics)
				}
				return err
			}
			search := ""
			if len(args) == 1 {
				search = args[0]
			}
			reasons := map[string]string{}
			for _, d := range reg.Diagnostics() {
				reasons[d.Class] = string(d.Reason)
			}
			out := cmd.OutOrStdout()
			for _, n := range reg.Find(search) {
				line := fmt.Sprintf("%s%s\t%s", strings.Repeat("  ", n.Depth), n.Name, reg.State(n.Name))
				if r, ok := reasons[n.Name]; ok {
					line += "\t" + r
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func printDiagnostics(cmd *cobra.Command, diags []registry.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}
}
