package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bl4ck0w1/homolynx/internal/discovery/permutations"
)

func NewCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <dictionary_file> <domain>",
		Short: "Show the size of the homograph space of a domain",
		Long: `Print the number of substitutions for each character of the domain, the total
number of combinations and the intensive batch plan, without generating anything.`,
		Args: argsWithUsage(2, 2),
		RunE: runCount,
	}
}

func runCount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	domain := permutations.NormalizeDomain(args[1])
	if err := validateDomain(domain); err != nil {
		return err
	}

	gen, err := newGenerator(args[0], cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total, factors := gen.Count(domain)
	fmt.Fprintf(out, "[-] Number of combinations for each character of %q = %s\n", domain, permutations.FormatFactors(factors))
	fmt.Fprintf(out, "[-] Number of possible combinations for %q = %s\n", domain, total)

	plan, err := permutations.BatchPlan(total, cfg.Generate.BatchRatio, cfg.Generate.BatchSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[-] Intensive batch size = %d, batches = %s\n", plan.BatchSize, plan.Batches)
	return nil
}
