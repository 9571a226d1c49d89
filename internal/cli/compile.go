package cli

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/theplant/docwhere/input"
)

var jsonOut = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

func newCompileCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "compile [where-json]",
		Short: "Compile a where value into SQL and parameters",
		Long: `Compile a JSON where value, given as argument or on stdin, into a
parameterized predicate. With a schema the value is validated against the
type's where-input first.`,
		Example: `  docwhere compile '{"ip": {"inSubnet": "10.0.0.0/8"}}'
  echo '{"OR": [{"name": {"eq": "a"}}]}' | docwhere compile --schema types.yaml -t Device`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readWhere(cmd, args)
			if err != nil {
				return err
			}
			return a.compile(cmd.OutOrStdout(), data, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "text", "Output format: text or json")
	return cmd
}

func readWhere(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return []byte(args[0]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, errors.Wrap(err, "read stdin")
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.New("no where value given")
	}
	return data, nil
}

func (a *app) compile(w io.Writer, data []byte, format string) error {
	dt, err := a.domainType()
	if err != nil {
		return err
	}
	opts := []input.Option{input.WithComplexityLimits(a.cfg.limits())}
	if dt != nil {
		g, err := a.generator()
		if err != nil {
			return err
		}
		opts = append(opts, input.WithShape(g.Generate(dt)))
	}
	expr, err := input.ParseJSON(data, opts...)
	if err != nil {
		return err
	}
	c, err := a.compiler()
	if err != nil {
		return err
	}
	sql, params, err := c.CompileFor(dt, expr, a.cfg.Root)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		out, err := jsonOut.Marshal(map[string]any{"sql": sql, "params": nonNil(params)})
		if err != nil {
			return errors.Wrap(err, "encode output")
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "text":
		if _, err := fmt.Fprintln(w, sql); err != nil {
			return err
		}
		for i, p := range params {
			v, err := jsonOut.MarshalToString(p)
			if err != nil {
				return errors.Wrap(err, "encode parameter")
			}
			if _, err := fmt.Fprintf(w, "$%d = %s\n", i+1, v); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Errorf("unknown format %q, want text or json", format)
}

func nonNil(params []any) []any {
	if params == nil {
		return []any{}
	}
	return params
}
