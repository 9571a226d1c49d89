package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/theplant/docwhere/shape"
)

func newShapeCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "shape",
		Short: "Print the where-input shape of a domain type",
		Example: `  docwhere shape --schema types.yaml -t Device
  docwhere shape --schema types.yaml -t Device -o json --field-names camel`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := a.domainType()
			if err != nil {
				return err
			}
			if dt == nil {
				return errors.New("shape needs a schema file")
			}
			g, err := a.generator()
			if err != nil {
				return err
			}
			s := g.Generate(dt)

			w := cmd.OutOrStdout()
			switch format {
			case "sdl":
				_, err = fmt.Fprint(w, shape.SDL(s))
				return err
			case "json":
				out, err := shape.JSON(s)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(out))
				return err
			}
			return errors.Errorf("unknown format %q, want sdl or json", format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "sdl", "Output format: sdl or json")
	return cmd
}
