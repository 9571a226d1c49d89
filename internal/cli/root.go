// Package cli implements the docwhere command-line interface.
package cli

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/compiler"
	"github.com/theplant/docwhere/schema"
	"github.com/theplant/docwhere/shape"
)

type app struct {
	configPath string
	flags      Config

	cfg    *Config
	logger *slog.Logger
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree. Flags override the config file.
func NewRootCommand() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "docwhere",
		Short: "Compile where filters into PostgreSQL predicates over JSONB documents",
		Long: `docwhere compiles structured where filters into parameterized PostgreSQL
predicates over a JSONB document column, and generates the where-input
shapes clients filter with.

Domain types come from a YAML schema file. Without one, fields are
classified by name and value.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default ./"+DefaultConfigFile+" when present)")
	flags.StringVar(&a.flags.Schema, "schema", "", "Path to YAML schema file")
	flags.StringVarP(&a.flags.Type, "type", "t", "", "Domain type to filter")
	flags.StringVar(&a.flags.Root, "root", "", "Document column, optionally qualified: data or devices.data")
	flags.StringVar(&a.flags.Placeholder, "placeholder", "", "Bind marker style: dollar or question")
	flags.StringVar(&a.flags.FieldNames, "field-names", "", "Exposed field names: keys or camel")
	flags.StringVar(&a.flags.LogLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newCompileCommand(a),
		newShapeCommand(a),
		newClassifyCommand(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	override("schema", &cfg.Schema, a.flags.Schema)
	override("type", &cfg.Type, a.flags.Type)
	override("root", &cfg.Root, a.flags.Root)
	override("placeholder", &cfg.Placeholder, a.flags.Placeholder)
	override("field-names", &cfg.FieldNames, a.flags.FieldNames)
	override("log-level", &cfg.LogLevel, a.flags.LogLevel)

	level, err := cfg.logLevel()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// domainType returns nil without a schema file. A schema with a single
// type needs no --type.
func (a *app) domainType() (*docwhere.DomainType, error) {
	if a.cfg.Schema == "" {
		if a.cfg.Type != "" {
			return nil, errors.Errorf("type %q given without a schema file", a.cfg.Type)
		}
		return nil, nil
	}
	s, err := schema.LoadYAML(a.cfg.Schema)
	if err != nil {
		return nil, err
	}
	if a.cfg.Type == "" {
		if len(s.Types) == 1 {
			return s.Types[0], nil
		}
		names := lo.Map(s.Types, func(t *docwhere.DomainType, _ int) string { return t.Name })
		return nil, errors.Errorf("schema has %d types, choose one with --type: %v", len(s.Types), names)
	}
	dt, ok := s.Type(a.cfg.Type)
	if !ok {
		return nil, errors.Errorf("schema %s has no type %q", a.cfg.Schema, a.cfg.Type)
	}
	return dt, nil
}

func (a *app) generator() (*shape.Generator, error) {
	opts := []shape.Option{shape.WithLogger(a.logger)}
	switch a.cfg.FieldNames {
	case "", "keys":
	case "camel":
		opts = append(opts, shape.WithFieldNamer(lo.CamelCase))
	default:
		return nil, errors.Errorf("unknown field names %q, want keys or camel", a.cfg.FieldNames)
	}
	return shape.NewGenerator(opts...), nil
}

func (a *app) compiler() (*compiler.Compiler, error) {
	placeholder, err := a.cfg.placeholder()
	if err != nil {
		return nil, err
	}
	return compiler.New(
		compiler.WithPlaceholder(placeholder),
		compiler.WithComplexityLimits(a.cfg.limits()),
		compiler.WithLogger(a.logger),
	), nil
}
