package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/source"
)

func newValidateCmd(f *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate payload documents against the union (\"-\" reads stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, c, err := f.setup(cmd)
			if err != nil {
				return err
			}
			reg, err := c.Build(ctx)
			if err != nil {
				return err
			}
			u := reg.Union()
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				b, err := readInput(cmd.InOrStdin(), path)
				if err != nil {
					return err
				}
				doc, err := source.Decode(detectFormat(format, path), b)
				if err == nil {
					inst, perr := u.Parse(ctx, doc)
					if perr == nil {
						fmt.Fprintf(out, "%s: ok (%s)\n", path, inst.Tag())
						continue
					}
					err = perr
				}
				failed++
				if iss, ok := polyskema.AsIssues(err); ok {
					for _, is := range iss {
						fmt.Fprintf(out, "%s: %s: %s: %s\n", path, is.Path, is.Code, is.Message)
					}
					continue
				}
				fmt.Fprintf(out, "%s: %v\n", path, err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d document(s) invalid", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "input", "", "input format: json or yaml (default from the file extension)")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func detectFormat(flag, path string) source.Format {
	if flag != "" {
		return source.Format(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return source.FormatYAML
	}
	return source.FormatJSON
}
