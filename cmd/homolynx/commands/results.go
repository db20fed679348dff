package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bl4ck0w1/homolynx/internal/discovery/permutations"
	"github.com/bl4ck0w1/homolynx/internal/storage"
	"github.com/bl4ck0w1/homolynx/pkg/utils"
)

func NewResultsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect generated results files",
		Long:  `List and view the <domain>.txt files written by generate.`,
	}
	cmd.PersistentFlags().StringP("output", "o", "", "Results directory (defaults to output_directory)")
	cmd.AddCommand(newResultsListCommand())
	cmd.AddCommand(newResultsViewCommand())
	return cmd
}

func newResultsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List results files",
		Args:  cobra.NoArgs,
		RunE:  runResultsList,
	}
}

func newResultsViewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <domain>",
		Short: "Print the homographs saved for a domain",
		Args:  cobra.ExactArgs(1),
		RunE:  runResultsView,
	}
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of rows to print (0 for all)")
	return cmd
}

func resultsDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("output"); dir != "" {
		return dir
	}
	if dir := viper.GetString("output_directory"); dir != "" {
		return dir
	}
	return "."
}

func runResultsList(cmd *cobra.Command, args []string) error {
	dir := resultsDir(cmd)
	if !utils.FileExists(dir) {
		logrus.Infof("No results directory found at %s", dir)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}
	if len(files) == 0 {
		logrus.Info("No results found")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Results in %s:\n", dir)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tHOMOGRAPHS\tSIZE\tMODIFIED")
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		variants, err := storage.ReadResults(f)
		if err != nil {
			logrus.Debugf("Skipping %s: %v", f, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n",
			strings.TrimSuffix(filepath.Base(f), ".txt"),
			len(variants),
			info.Size(),
			info.ModTime().Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func runResultsView(cmd *cobra.Command, args []string) error {
	domain := permutations.NormalizeDomain(args[0])
	path := filepath.Join(resultsDir(cmd), utils.ResultsFileName(domain))

	variants, err := storage.ReadResults(path)
	if err != nil {
		return fmt.Errorf("read results for %s: %w", domain, err)
	}
	limit, _ := cmd.Flags().GetInt("limit")

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tHOMOGRAPH\tPUNYCODE")
	for i, v := range variants {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, v.Candidate, v.Encoded)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if limit > 0 && len(variants) > limit {
		fmt.Fprintf(cmd.OutOrStdout(), "... %d more\n", len(variants)-limit)
	}
	return nil
}
