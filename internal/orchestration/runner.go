package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/bl4ck0w1/homolynx/internal/discovery/permutations"
	"github.com/bl4ck0w1/homolynx/pkg/models"
	"github.com/bl4ck0w1/homolynx/pkg/utils"
)

var ErrAborted = errors.New("run aborted by user")

type State int

const (
	StateIdle State = iota
	StateAwaitingConfirmation
	StateGenerating
	StateComplete
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateGenerating:
		return "generating"
	case StateComplete:
		return "complete"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Encoder interface {
	Encode(candidate string) (string, bool)
}

type Sink interface {
	Write(v models.Variant) error
}

type CandidateFilter interface {
	Match(candidate string) bool
}

type RunConfig struct {
	Mode       models.Mode
	BatchRatio int
	// BatchSize overrides the size derived from BatchRatio when > 0.
	BatchSize int
	// WarnThreshold is the combination count above which a lazy run logs a
	// warning; 0 disables the warning.
	WarnThreshold    int64
	ProgressInterval time.Duration
}

type RunnerDeps struct {
	Generator *permutations.Generator
	Encoder   Encoder
	Sink      Sink
	Confirmer Confirmer
	Filter    CandidateFilter
	Out       io.Writer
	Metrics   *utils.MetricsCollector
	Logger    *logrus.Logger
}

// Runner drives one domain through generation, encoding and the sink. It is
// strictly sequential: candidates are pulled, encoded and written one at a
// time.
type Runner struct {
	generator *permutations.Generator
	encoder   Encoder
	sink      Sink
	confirmer Confirmer
	filter    CandidateFilter
	out       io.Writer
	metrics   *utils.MetricsCollector
	logger    *logrus.Logger
	config    RunConfig
	state     State
}

func NewRunner(deps RunnerDeps, config RunConfig) (*Runner, error) {
	if deps.Generator == nil || deps.Encoder == nil || deps.Sink == nil {
		return nil, errors.New("runner requires a generator, an encoder and a sink")
	}
	if config.Mode == "" {
		config.Mode = models.ModeLazy
	}
	if config.Mode != models.ModeLazy && config.Mode != models.ModeIntensive {
		return nil, &models.InvalidModeError{Mode: string(config.Mode)}
	}
	if config.Mode == models.ModeIntensive && deps.Confirmer == nil {
		return nil, errors.New("intensive mode requires a confirmer")
	}
	if config.BatchRatio <= 0 {
		config.BatchRatio = permutations.DefaultBatchRatio
	}
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = 10 * time.Second
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}

	return &Runner{
		generator: deps.Generator,
		encoder:   deps.Encoder,
		sink:      deps.Sink,
		confirmer: deps.Confirmer,
		filter:    deps.Filter,
		out:       deps.Out,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		config:    config,
	}, nil
}

func (r *Runner) State() State { return r.state }

func (r *Runner) setState(s State) {
	r.logger.Debugf("Run state %s -> %s", r.state, s)
	r.state = s
}

// Run enumerates the homographs of domain. It returns ErrAborted when the
// confirmation gate is refused and the context error when ctx ends early;
// the summary is filled in either case.
func (r *Runner) Run(ctx context.Context, domain string) (*models.RunSummary, error) {
	r.state = StateIdle
	domain = permutations.NormalizeDomain(domain)
	summary := &models.RunSummary{Domain: domain, Mode: r.config.Mode, StartTime: time.Now()}
	defer func() { summary.EndTime = time.Now() }()

	if domain == "" {
		return summary, errors.New("empty domain")
	}

	total, factors := r.generator.Count(domain)
	summary.Combinations = total
	fmt.Fprintf(r.out, "[-] Number of combinations for each character of %q = %s\n", domain, permutations.FormatFactors(factors))
	fmt.Fprintf(r.out, "[-] Number of possible combinations for %q = %s\n", domain, total)

	totalF, _ := new(big.Float).SetInt(total).Float64()
	r.metrics.SetGauge(utils.MetricCombinations, totalF, prometheus.Labels{"domain": domain})

	var err error
	switch r.config.Mode {
	case models.ModeIntensive:
		err = r.runIntensive(ctx, domain, total, summary)
	default:
		err = r.runLazy(ctx, domain, total, summary)
	}
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		summary.Interrupted = true
	}
	return summary, err
}

func (r *Runner) runLazy(ctx context.Context, domain string, total *big.Int, summary *models.RunSummary) error {
	if r.config.WarnThreshold > 0 && total.Cmp(big.NewInt(r.config.WarnThreshold)) > 0 {
		r.logger.Warnf("%s has %s possible homographs; lazy generation will take a long time", domain, total)
	}

	r.setState(StateGenerating)
	progress := &rate.Sometimes{Interval: r.config.ProgressInterval}
	var idx int64
	for candidate := range r.generator.Lazy(domain) {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx++
		if err := r.process(candidate, idx, summary); err != nil {
			return err
		}
		progress.Do(func() {
			r.logger.Infof("Processed %d/%s candidates for %s", idx, total, domain)
		})
	}
	r.setState(StateComplete)
	return nil
}

func (r *Runner) runIntensive(ctx context.Context, domain string, total *big.Int, summary *models.RunSummary) error {
	plan, err := permutations.BatchPlan(total, r.config.BatchRatio, r.config.BatchSize)
	if err != nil {
		return err
	}
	batches, err := r.generator.Intensive(domain, plan.BatchSize)
	if err != nil {
		return err
	}
	summary.BatchSize = plan.BatchSize

	r.setState(StateAwaitingConfirmation)
	ok, err := r.confirmer.Confirm(plan.BatchSize)
	if err != nil {
		return err
	}
	if !ok {
		r.setState(StateAborted)
		return ErrAborted
	}

	r.setState(StateGenerating)
	fmt.Fprintf(r.out, "[-] Generating IDN homographs for %q in batches of %d.\n", domain, plan.BatchSize)
	fmt.Fprintf(r.out, "[-] Total number of batches = %s\n", plan.Batches)

	batchIdx := 0
	for batch := range batches {
		batchIdx++
		fmt.Fprintf(r.out, "\nBatch %d:\n", batchIdx)

		start := time.Now()
		var batchErr error
		r.metrics.TimeFunc(utils.MetricBatchDuration, nil, func() {
			batchErr = r.processBatch(ctx, batch, summary)
		})
		if batchErr != nil {
			summary.Batches = batchIdx
			return batchErr
		}
		r.logger.Debugf("Batch %d/%s done in %s", batchIdx, plan.Batches, utils.HumanizeDuration(time.Since(start)))
	}
	summary.Batches = batchIdx
	r.setState(StateComplete)
	return nil
}

func (r *Runner) processBatch(ctx context.Context, batch []string, summary *models.RunSummary) error {
	for i, candidate := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.process(candidate, int64(i+1), summary); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) process(candidate string, idx int64, summary *models.RunSummary) error {
	labels := prometheus.Labels{"mode": string(r.config.Mode)}
	summary.Generated++
	r.metrics.IncCounter(utils.MetricCandidates, 1, labels)

	if r.filter != nil && !r.filter.Match(candidate) {
		summary.Filtered++
		r.metrics.IncCounter(utils.MetricFiltered, 1, labels)
		return nil
	}

	encoded, ok := r.encoder.Encode(candidate)
	if !ok {
		summary.Skipped++
		r.metrics.IncCounter(utils.MetricEncodeFailures, 1, labels)
		return nil
	}

	fmt.Fprintf(r.out, "[%d] - %s -> %s\n", idx, candidate, encoded)
	if err := r.sink.Write(models.Variant{Candidate: candidate, Encoded: encoded}); err != nil {
		return fmt.Errorf("save %q: %w", candidate, err)
	}
	summary.Encoded++
	r.metrics.IncCounter(utils.MetricEncoded, 1, labels)
	return nil
}
