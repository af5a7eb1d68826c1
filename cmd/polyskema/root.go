package main

import (
	"context"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/reoring/polyskema/internal/container"
)

const version = "0.1.0"

type rootFlags struct {
	manifest string
	sets     []string
	roots    []string
	probe    bool
	debug    bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "polyskema",
		Short:         "Discriminated-union schemas from class hierarchies",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.manifest, "manifest", "m", "", "YAML class manifest")
	pf.StringArrayVar(&f.sets, "set", nil, "override a config key (key=value, value parsed as YAML)")
	pf.StringArrayVar(&f.roots, "root", nil, "build from this class instead of the manifest roots (repeatable)")
	pf.BoolVar(&f.probe, "probe", false, "exclude classes that cannot be built without arguments")
	pf.BoolVar(&f.debug, "debug", false, "enable debug logs")

	cmd.AddCommand(
		newClassesCmd(f),
		newSchemaCmd(f),
		newValidateCmd(f),
		newExamplesCmd(f),
	)
	return cmd
}

// setup returns a logging context writing to stderr and the wired services.
func (f *rootFlags) setup(cmd *cobra.Command) (context.Context, *container.Container, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx = log.Context(ctx, log.WithFormat(format), log.WithOutput(cmd.ErrOrStderr()))
	if f.debug {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}
	c, err := container.New(container.Settings{
		Manifest:  f.manifest,
		Overrides: f.sets,
		Probe:     f.probe,
		Roots:     f.roots,
	})
	if err != nil {
		return nil, nil, err
	}
	return ctx, c, nil
}
