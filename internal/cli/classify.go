package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/classify"
	"github.com/theplant/docwhere/strategy"
)

func newClassifyCommand(a *app) *cobra.Command {
	var operators bool
	cmd := &cobra.Command{
		Use:   "classify NAME [VALUE]",
		Short: "Show the field type inferred from a field name and sample value",
		Long: `Classify a field the way schema-less compilation does: the name
dictionary first, then heuristics on the sample value. VALUE is read as
JSON when it parses, as a plain string otherwise.`,
		Example: `  docwhere classify client_ip
  docwhere classify location 10.0.0.1 --operators`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sample any
			if len(args) == 2 {
				if err := jsonOut.UnmarshalFromString(args[1], &sample); err != nil {
					sample = args[1]
				}
			}
			ft := classify.Default().Classify(args[0], docwhere.FieldType{}, sample)
			a.logger.Debug("classified", "name", args[0], "sample", sample, "type", ft)

			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(w, "%s (%sFilter)\n", ft, strategy.ScalarName(ft)); err != nil {
				return err
			}
			if !operators {
				return nil
			}
			registry := strategy.MustDefault()
			for _, op := range registry.Operators(ft) {
				if _, err := fmt.Fprintf(w, "  %-18s %s\n", op.Name, op.Description); err != nil {
					return err
				}
			}
			var restricted []string
			for _, op := range strategy.PatternOperators {
				if registry.IsRestricted(op, ft) {
					restricted = append(restricted, op)
				}
			}
			if len(restricted) > 0 {
				_, err := fmt.Fprintf(w, "restricted: %s\n", strings.Join(restricted, ", "))
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&operators, "operators", false, "List the operators of the field type")
	return cmd
}
