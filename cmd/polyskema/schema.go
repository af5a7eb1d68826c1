package main

import (
	"context"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"goa.design/clue/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/reoring/polyskema/class"
	js "github.com/reoring/polyskema/jsonschema"
	"github.com/reoring/polyskema/openapi"
	"github.com/reoring/polyskema/registry"
)

const (
	formatJSON    = "json"
	formatYAML    = "yaml"
	formatOpenAPI = "openapi"
)

type schemaFlags struct {
	format  string
	name    string
	check   bool
	perRoot bool
}

func newSchemaCmd(f *rootFlags) *cobra.Command {
	sf := &schemaFlags{}
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the union schema (JSON Schema 2020-12 or OpenAPI 3 components)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch sf.format {
			case formatJSON, formatYAML, formatOpenAPI:
			default:
				return fmt.Errorf("unknown format %q (json, yaml or openapi)", sf.format)
			}
			ctx, c, err := f.setup(cmd)
			if err != nil {
				return err
			}
			title := c.Manifest().Namespace
			if title == "" {
				title = "polyskema"
			}
			if !sf.perRoot {
				reg, err := c.Build(ctx)
				if err != nil {
					return err
				}
				doc, err := sf.render(ctx, reg, title)
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), doc, sf.format)
			}

			// one document per root, built concurrently over the shared cache
			roots := c.Roots()
			docs := make([]any, len(roots))
			g, gctx := errgroup.WithContext(ctx)
			for i, root := range roots {
				g.Go(func() error {
					reg, err := c.Build(gctx, root)
					if err != nil {
						return fmt.Errorf("%s: %w", class.QualifiedName(root), err)
					}
					docs[i], err = sf.render(gctx, reg, title)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			out := make(map[string]any, len(roots))
			for i, root := range roots {
				out[class.QualifiedName(root)] = docs[i]
			}
			stats := c.Cache().Stats()
			log.Info(ctx, log.KV{K: "roots", V: len(roots)}, log.KV{K: "cache-hits", V: stats.Hits}, log.KV{K: "cache-misses", V: stats.Misses})
			return write(cmd.OutOrStdout(), out, sf.format)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&sf.format, "format", "f", formatJSON, "output format: json, yaml or openapi")
	fl.StringVar(&sf.name, "name", "Model", "component name of the union (openapi only)")
	fl.BoolVar(&sf.check, "check", false, "validate the document and its embedded examples before printing")
	fl.BoolVar(&sf.perRoot, "per-root", false, "emit one document per root class")
	return cmd
}

func (sf *schemaFlags) render(ctx context.Context, reg *registry.Registry, title string) (any, error) {
	if sf.format == formatOpenAPI {
		doc, err := openapi.Document(reg.Union(), sf.name, title, version)
		if err != nil {
			return nil, err
		}
		if sf.check {
			if err := openapi.Validate(ctx, doc); err != nil {
				return nil, err
			}
		}
		return doc, nil
	}
	s, err := reg.Union().JSONSchema()
	if err != nil {
		return nil, err
	}
	if sf.check {
		if err := js.Check(s); err != nil {
			return nil, fmt.Errorf("schema check: %w", err)
		}
	}
	return s, nil
}

func write(w io.Writer, v any, format string) error {
	if format != formatYAML {
		b, err := j.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	// go through JSON so the json tags decide the key names
	raw, err := j.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := j.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}
