package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pyextent/internal/ui/pretty"
	"github.com/yaklabco/pyextent/pkg/config"
	"github.com/yaklabco/pyextent/pkg/exactsrc"
	"github.com/yaklabco/pyextent/pkg/parser/treesitter"
)

func newIndexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "index <file>",
		Short: "Print the line lengths and offset index of a file",
		Long: `Print the length of every source line and the sorted linear offsets at
which tree nodes start. The last offset is the length of the source.
These are the candidate end points the resolver searches.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0])
		},
	}
}

func runIndex(cmd *cobra.Command, path string) error {
	ctx := commandContext(cmd)

	cfg, _, err := loadConfig(ctx, cmd, &config.Config{Col: -1}, nil)
	if err != nil {
		return err
	}

	units, err := loadUnits(ctx, path, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	parser := treesitter.New(treesitter.WithMaxFileSize(cfg.MaxFileSize))

	for _, unit := range units {
		file, err := parser.Parse(ctx, unit.Label, unit.Content)
		if err != nil {
			return fmt.Errorf("parse %s: %w", unit.Label, err)
		}

		index, err := exactsrc.New(file, parser).Index()
		if err != nil {
			return fmt.Errorf("index %s: %w", unit.Label, err)
		}

		lines := []string{
			styles.FilePath.Render(unit.Label),
			"  " + styles.Dim.Render("line lengths:") + " " + joinInts(exactsrc.LineLengths(file.Source())),
			"  " + styles.Dim.Render("offsets:     ") + " " + joinInts(index),
		}
		for _, line := range lines {
			if err := writeLine(out, line); err != nil {
				return err
			}
		}
	}

	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
