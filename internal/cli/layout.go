package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
)

// layoutsCommand creates the layouts command for inspecting the registry.
func (c *CLI) layoutsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "Inspect plot, panel and data layer layouts",
		Long: `Inspect the layout registry: the built-in layouts plus any
YAML or JSON files found in the configured layouts_dir.`,
	}

	cmd.AddCommand(c.layoutsListCommand())
	cmd.AddCommand(c.layoutsShowCommand())

	return cmd
}

// layoutsListCommand creates the "layouts list" subcommand.
func (c *CLI) layoutsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "list [kind]",
		Short:     "List registered layouts",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.layouts()
			if err != nil {
				return err
			}
			var kind layout.Kind
			if len(args) == 1 {
				if kind, err = parseKind(args[0]); err != nil {
					return err
				}
			}
			writeLayoutTable(cmd.OutOrStdout(), reg, kind)
			printNextStep("Show one", "locuszoom layouts show plot standard_association")
			return nil
		},
	}
}

// layoutsShowCommand creates the "layouts show" subcommand.
func (c *CLI) layoutsShowCommand() *cobra.Command {
	var namespaces []string

	cmd := &cobra.Command{
		Use:   "show <kind> <name>",
		Short: "Print a resolved layout as JSON",
		Example: `  locuszoom layouts show plot standard_association
  locuszoom layouts show data_layer association_pvalues --namespace default=assoc2`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeShowArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			overrides, err := namespaceOverrides(namespaces)
			if err != nil {
				return err
			}
			reg, err := c.layouts()
			if err != nil {
				return err
			}
			lay, err := reg.Get(kind, args[1], overrides)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(lay, "", "  ")
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&namespaces, "namespace", nil, "namespace override key=value (repeatable)")

	return cmd
}

// layouts loads the registry from the configuration.
func (c *CLI) layouts() (*layout.Registry, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.newLayouts()
}

func kindNames() []string {
	names := make([]string, len(layout.Kinds))
	for i, k := range layout.Kinds {
		names[i] = string(k)
	}
	return names
}

// parseKind validates a layout kind argument.
func parseKind(s string) (layout.Kind, error) {
	k := layout.Kind(s)
	if !layout.ValidKinds[k] {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown layout kind %q (must be one of: %s)", s, strings.Join(kindNames(), ", "))
	}
	return k, nil
}

// namespaceOverrides turns key=value pairs into a layout override that
// replaces the template's namespace map entries.
func namespaceOverrides(pairs []string) (layout.Layout, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ns := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid namespace %q (want key=value)", p)
		}
		ns[key] = value
	}
	return layout.Layout{"namespace": ns}, nil
}

// writeLayoutTable renders the registered layouts as a table. An empty kind
// lists every kind.
func writeLayoutTable(w io.Writer, reg *layout.Registry, kind layout.Kind) {
	var rows [][]string
	all := reg.ListAll()
	for _, k := range layout.Kinds {
		if kind != "" && k != kind {
			continue
		}
		for _, name := range all[k] {
			rows = append(rows, []string{string(k), name})
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 0 {
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorCyan)
		})

	fmt.Fprintln(w, t.Render())
}
