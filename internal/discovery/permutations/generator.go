package permutations

import (
	"fmt"
	"iter"
	"math"
	"math/big"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bl4ck0w1/homolynx/pkg/utils"
)

// MaxMaterialized caps how many variants the intensive strategy will hold.
const MaxMaterialized = math.MaxInt32

// Lazy enumerates the variants of domain one at a time, leftmost character
// varying slowest. Every range over the returned sequence starts over from
// the first variant.
func (c *Combinatorics) Lazy(domain string, cm ConfusableMap) iter.Seq[string] {
	positions := c.Positions(domain, cm)
	return func(yield func(string) bool) {
		idx := make([]int, len(positions))
		var b strings.Builder
		for {
			b.Reset()
			for p, pos := range positions {
				b.WriteString(pos.Substitutions[idx[p]])
			}
			if !yield(b.String()) {
				return
			}

			p := len(positions) - 1
			for ; p >= 0; p-- {
				idx[p]++
				if idx[p] < len(positions[p].Substitutions) {
					break
				}
				idx[p] = 0
			}
			if p < 0 {
				return
			}
		}
	}
}

// Materialize collects every variant of domain in memory.
func (c *Combinatorics) Materialize(domain string, cm ConfusableMap) ([]string, error) {
	n, err := c.materializable(domain, cm)
	if err != nil {
		return nil, err
	}
	return c.collect(domain, cm, n), nil
}

func (c *Combinatorics) materializable(domain string, cm ConfusableMap) (int, error) {
	total, _ := c.Count(domain, cm)
	if !total.IsInt64() || total.Int64() > MaxMaterialized {
		return 0, fmt.Errorf("%w: %s variants", ErrTooLarge, total)
	}
	return int(total.Int64()), nil
}

func (c *Combinatorics) collect(domain string, cm ConfusableMap, n int) []string {
	all := make([]string, 0, n)
	for v := range c.Lazy(domain, cm) {
		all = append(all, v)
	}
	return all
}

// Intensive materializes the whole product on iteration and hands it back in
// contiguous slices of batchSize; the last slice may be shorter. Peak memory
// grows with the full number of variants, which is bounded before the
// sequence is returned.
func (c *Combinatorics) Intensive(domain string, cm ConfusableMap, batchSize int) (iter.Seq[[]string], error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be > 0, got %d", batchSize)
	}
	n, err := c.materializable(domain, cm)
	if err != nil {
		return nil, err
	}

	return func(yield func([]string) bool) {
		for _, batch := range utils.BatchSlice(c.collect(domain, cm, n), batchSize) {
			if !yield(batch) {
				return
			}
		}
	}, nil
}

type GeneratorOptions struct {
	FreezeSuffix bool
}

// Generator ties a loaded confusable wordlist to the enumeration strategies.
type Generator struct {
	combinatorics *Combinatorics
	logger        *logrus.Logger

	confusables ConfusableMap
	report      BuildReport
}

func NewGenerator(wordlistPath string, logger *logrus.Logger, opts GeneratorOptions) (*Generator, error) {
	if logger == nil {
		logger = logrus.New()
	}

	wm := NewWordlistManager(logger)
	cm, report, err := wm.Load(wordlistPath)
	if err != nil {
		return nil, err
	}
	return NewGeneratorFromMap(cm, report, logger, opts), nil
}

func NewGeneratorFromMap(cm ConfusableMap, report BuildReport, logger *logrus.Logger, opts GeneratorOptions) *Generator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Generator{
		combinatorics: NewCombinatorics(opts.FreezeSuffix),
		logger:        logger,
		confusables:   cm,
		report:        report,
	}
}

func (g *Generator) Confusables() ConfusableMap { return g.confusables }

func (g *Generator) Report() BuildReport { return g.report }

func (g *Generator) Count(domain string) (*big.Int, []int) {
	return g.combinatorics.Count(normalizeDomain(domain), g.confusables)
}

func (g *Generator) Lazy(domain string) iter.Seq[string] {
	return g.combinatorics.Lazy(normalizeDomain(domain), g.confusables)
}

func (g *Generator) Intensive(domain string, batchSize int) (iter.Seq[[]string], error) {
	domain = normalizeDomain(domain)
	seq, err := g.combinatorics.Intensive(domain, g.confusables, batchSize)
	if err != nil {
		return nil, err
	}
	total, _ := g.combinatorics.Count(domain, g.confusables)
	g.logger.Debugf("Intensive generation for %s will hold %s variants in memory", domain, total)
	return seq, nil
}

func (g *Generator) Stats() map[string]interface{} {
	return map[string]interface{}{
		"wordlist":    g.report.Path,
		"entries":     g.report.Entries,
		"dropped":     g.report.Dropped,
		"skipped":     g.report.Skipped,
		"fingerprint": fmt.Sprintf("%016x", g.report.Fingerprint),
	}
}

// NormalizeDomain lowercases and trims a user supplied domain.
func NormalizeDomain(d string) string {
	return normalizeDomain(d)
}

func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}
