package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/bl4ck0w1/homolynx/internal/discovery/permutations"
	"github.com/bl4ck0w1/homolynx/internal/orchestration"
	"github.com/bl4ck0w1/homolynx/internal/storage"
	"github.com/bl4ck0w1/homolynx/internal/validation/idn"
	"github.com/bl4ck0w1/homolynx/pkg/models"
	"github.com/bl4ck0w1/homolynx/pkg/utils"
)

func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <dictionary_file> <domain> [lazy|intensive]",
		Short: "Generate IDN homographs of a domain",
		Long: `Generate every homograph of a domain using a homoglyph dictionary, encode each
candidate to punycode and append "<candidate>,<punycode>" lines to <domain>.txt.

lazy (default) streams candidates one at a time. intensive materializes them and
processes them in batches after a confirmation prompt.`,
		Args: argsWithUsage(2, 3),
		RunE: runGenerate,
	}

	cmd.Flags().IntP("batch-size", "b", 0, "Intensive batch size (0 derives it from the batch ratio)")
	cmd.Flags().Int("batch-ratio", permutations.DefaultBatchRatio, "Number of batches an intensive run aims for")
	cmd.Flags().Int64("warn-threshold", 1_000_000, "Warn when a lazy run exceeds this many combinations (0 disables)")
	cmd.Flags().BoolP("yes", "y", false, "Skip the intensive confirmation prompt")
	cmd.Flags().Bool("freeze-suffix", false, "Keep the public suffix of the domain unchanged")
	cmd.Flags().Bool("skeleton", false, "Only keep candidates whose confusable skeleton matches the domain")
	cmd.Flags().String("profile", string(idn.DefaultProfile), "IDNA profile (registration, lookup)")
	cmd.Flags().StringP("output", "o", "", "Directory for results files (defaults to output_directory)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address during the run")

	_ = viper.BindPFlag("generate.batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("generate.batch_ratio", cmd.Flags().Lookup("batch-ratio"))
	_ = viper.BindPFlag("generate.warn_threshold", cmd.Flags().Lookup("warn-threshold"))
	_ = viper.BindPFlag("generate.assume_yes", cmd.Flags().Lookup("yes"))
	_ = viper.BindPFlag("generate.freeze_suffix", cmd.Flags().Lookup("freeze-suffix"))
	_ = viper.BindPFlag("generate.skeleton_filter", cmd.Flags().Lookup("skeleton"))
	_ = viper.BindPFlag("encoder.profile", cmd.Flags().Lookup("profile"))
	_ = viper.BindPFlag("metrics.addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if dir, _ := cmd.Flags().GetString("output"); dir != "" {
		viper.Set("output_directory", dir)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	modeArg := cfg.Generate.Mode
	if len(args) == 3 {
		modeArg = args[2]
	}
	mode, err := models.ParseMode(modeArg)
	if err != nil {
		cmd.PrintErrln(cmd.UsageString())
		return err
	}

	dictionary, domain := args[0], permutations.NormalizeDomain(args[1])
	if err := validateDomain(domain); err != nil {
		return err
	}

	logger := logrus.StandardLogger()
	out := cmd.OutOrStdout()

	gen, err := newGenerator(dictionary, cfg)
	if err != nil {
		return err
	}
	printConfusables(out, gen.Confusables())

	encoder, err := idn.NewEncoder(idn.Profile(cfg.Encoder.Profile), logger)
	if err != nil {
		return err
	}

	metrics := utils.NewMetricsCollector(cfg.Metrics.Addr != "")
	if err := metrics.RegisterHomographMetrics(); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	metrics.IncCounter(utils.MetricDroppedEntries, float64(gen.Report().Dropped), prometheus.Labels{"mode": string(mode)})

	sink := storage.NewResultsFile(cfg.OutputDirectory, domain, logger)
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warnf("Failed to release results lock: %v", err)
		}
	}()

	var confirmer orchestration.Confirmer = orchestration.NewPromptConfirmer(cmd.InOrStdin(), out)
	if cfg.Generate.AssumeYes {
		confirmer = orchestration.AutoConfirmer{}
	}
	var filter orchestration.CandidateFilter
	if cfg.Generate.SkeletonFilter {
		filter = idn.NewSkeletonFilter(domain)
	}

	runner, err := orchestration.NewRunner(orchestration.RunnerDeps{
		Generator: gen,
		Encoder:   encoder,
		Sink:      sink,
		Confirmer: confirmer,
		Filter:    filter,
		Out:       out,
		Metrics:   metrics,
		Logger:    logger,
	}, orchestration.RunConfig{
		Mode:          mode,
		BatchRatio:    cfg.Generate.BatchRatio,
		BatchSize:     cfg.Generate.BatchSize,
		WarnThreshold: cfg.Generate.WarnThreshold,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()

	g, gctx := errgroup.WithContext(serveCtx)
	if cfg.Metrics.Addr != "" {
		logger.Infof("Serving metrics on %s/metrics", cfg.Metrics.Addr)
		g.Go(func() error {
			return metrics.StartServerWithContext(gctx, cfg.Metrics.Addr)
		})
	}

	var summary *models.RunSummary
	g.Go(func() error {
		defer stopServe()
		var runErr error
		summary, runErr = runner.Run(gctx, domain)
		return runErr
	})

	err = g.Wait()
	if summary != nil {
		summary.ResultsPath = sink.Path()
	}
	switch {
	case errors.Is(err, orchestration.ErrAborted):
		return err
	case summary != nil && summary.Interrupted && ctx.Err() != nil:
		logger.Warn("Generation interrupted, partial results kept")
	case err != nil:
		return err
	}

	printSummary(out, summary, sink.Written())
	printMetrics(out, metrics)
	return nil
}

func printSummary(w io.Writer, s *models.RunSummary, written int64) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "[-] Generated %d candidates, encoded %d, skipped %d, filtered %d in %s\n",
		s.Generated, s.Encoded, s.Skipped, s.Filtered, utils.HumanizeDuration(s.EndTime.Sub(s.StartTime).Round(time.Millisecond)))
	if written > 0 {
		fmt.Fprintf(w, "[+] Results saved to %s\n", s.ResultsPath)
	} else {
		fmt.Fprintln(w, "[-] No results written")
	}
}

func printMetrics(w io.Writer, m *utils.MetricsCollector) {
	snap, err := m.Snapshot()
	if err != nil {
		logrus.Debugf("Metrics snapshot failed: %v", err)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	for _, name := range utils.SortedMetricNames(snap) {
		if !strings.HasPrefix(name, "homolynx_") {
			continue
		}
		fmt.Fprintf(tw, "%s\t%g\n", name, snap[name])
	}
	_ = tw.Flush()
}
