package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <dictionary_file>",
		Short: "Show homoglyph dictionary statistics",
		Long:  `Load a homoglyph dictionary and report its entries, ignored lines and fingerprint.`,
		Args:  argsWithUsage(1, 1),
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gen, err := newGenerator(args[0], cfg)
	if err != nil {
		return err
	}

	stats := gen.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Dictionary Statistics:")
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════")
	for _, k := range keys {
		fmt.Fprintf(out, "%-12s %v\n", k+":", stats[k])
	}
	return nil
}
