package orchestration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/bl4ck0w1/homolynx/internal/discovery/permutations"
	"github.com/bl4ck0w1/homolynx/internal/storage"
	"github.com/bl4ck0w1/homolynx/internal/validation/idn"
	"github.com/bl4ck0w1/homolynx/pkg/models"
	"github.com/bl4ck0w1/homolynx/pkg/utils"
)

type fakeEncoder struct {
	reject map[string]bool
}

func (f fakeEncoder) Encode(candidate string) (string, bool) {
	if f.reject[candidate] {
		return "", false
	}
	return "enc:" + candidate, true
}

type memorySink struct {
	variants []models.Variant
}

func (s *memorySink) Write(v models.Variant) error {
	s.variants = append(s.variants, v)
	return nil
}

func (s *memorySink) candidates() []string {
	out := make([]string, 0, len(s.variants))
	for _, v := range s.variants {
		out = append(out, v.Candidate)
	}
	return out
}

type rejectAll struct{}

func (rejectAll) Match(string) bool { return false }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(bytes.NewBuffer(nil))
	return l
}

func testGenerator() *permutations.Generator {
	cm := permutations.ConfusableMap{
		"a": {"a", "α"},
		"c": {"c", "с"},
	}
	return permutations.NewGeneratorFromMap(cm, permutations.BuildReport{}, quietLogger(), permutations.GeneratorOptions{})
}

func TestRunLazySkipsEncodeFailures(t *testing.T) {
	sink := &memorySink{}
	var out bytes.Buffer
	r, err := NewRunner(RunnerDeps{
		Generator: testGenerator(),
		Encoder:   fakeEncoder{reject: map[string]bool{"αc": true}},
		Sink:      sink,
		Out:       &out,
		Logger:    quietLogger(),
	}, RunConfig{Mode: models.ModeLazy})
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), "AC")
	require.NoError(t, err)
	require.Equal(t, StateComplete, r.State())

	require.Equal(t, []string{"ac", "aс", "αс"}, sink.candidates())
	require.Equal(t, "4", summary.Combinations.String())
	require.EqualValues(t, 4, summary.Generated)
	require.EqualValues(t, 3, summary.Encoded)
	require.EqualValues(t, 1, summary.Skipped)
	require.Contains(t, out.String(), `of "ac" = 2, 2`)
	require.Contains(t, out.String(), "[2] - aс -> enc:aс")
	require.NotContains(t, out.String(), "- αc ->")
}

func TestRunSkipsCandidatesIDNARejects(t *testing.T) {
	cm := permutations.ConfusableMap{
		"a": {"a", "а", "ａ", "𝐚", "ⓐ"},
	}
	gen := permutations.NewGeneratorFromMap(cm, permutations.BuildReport{}, quietLogger(), permutations.GeneratorOptions{})
	enc, err := idn.NewEncoder(idn.DefaultProfile, quietLogger())
	require.NoError(t, err)

	sink := &memorySink{}
	r, err := NewRunner(RunnerDeps{
		Generator: gen,
		Encoder:   enc,
		Sink:      sink,
		Logger:    quietLogger(),
	}, RunConfig{})
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), "ab.com")
	require.NoError(t, err)
	require.EqualValues(t, 5, summary.Generated)
	require.EqualValues(t, 2, summary.Encoded)
	require.EqualValues(t, 3, summary.Skipped)

	require.Equal(t, []string{"ab.com", "аb.com"}, sink.candidates())
	require.Equal(t, "ab.com", sink.variants[0].Encoded)
	require.True(t, strings.HasPrefix(sink.variants[1].Encoded, "xn--"))
	for _, v := range sink.variants[1:] {
		require.NotEqual(t, "ab.com", v.Encoded)
	}
}

func TestRunIntensiveBatches(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		batches   int
		headers   int
	}{
		{name: "ratio default", batchSize: 0, batches: 4, headers: 4},
		{name: "override", batchSize: 3, batches: 2, headers: 2},
		{name: "single batch", batchSize: 10, batches: 1, headers: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &memorySink{}
			var out bytes.Buffer
			r, err := NewRunner(RunnerDeps{
				Generator: testGenerator(),
				Encoder:   fakeEncoder{},
				Sink:      sink,
				Confirmer: AutoConfirmer{},
				Out:       &out,
				Logger:    quietLogger(),
			}, RunConfig{Mode: models.ModeIntensive, BatchSize: tt.batchSize})
			require.NoError(t, err)

			summary, err := r.Run(context.Background(), "ac")
			require.NoError(t, err)
			require.Equal(t, tt.batches, summary.Batches)
			require.Equal(t, strings.Count(out.String(), "\nBatch "), tt.headers)
			require.Equal(t, []string{"ac", "aс", "αc", "αс"}, sink.candidates())
		})
	}
}

func TestRunIntensiveRecordsBatchDuration(t *testing.T) {
	metrics := utils.NewMetricsCollector(false)
	require.NoError(t, metrics.RegisterHomographMetrics())

	r, err := NewRunner(RunnerDeps{
		Generator: testGenerator(),
		Encoder:   fakeEncoder{},
		Sink:      &memorySink{},
		Confirmer: AutoConfirmer{},
		Metrics:   metrics,
		Logger:    quietLogger(),
	}, RunConfig{Mode: models.ModeIntensive, BatchSize: 3})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "ac")
	require.NoError(t, err)

	snap, err := metrics.Snapshot()
	require.NoError(t, err)
	require.Equal(t, 2.0, snap[utils.MetricBatchDuration])
}

func TestRunIntensiveAbortWritesNothing(t *testing.T) {
	dir := t.TempDir()
	sink := storage.NewResultsFile(dir, "ac", quietLogger())
	defer sink.Close()

	var out bytes.Buffer
	r, err := NewRunner(RunnerDeps{
		Generator: testGenerator(),
		Encoder:   fakeEncoder{},
		Sink:      sink,
		Confirmer: NewPromptConfirmer(strings.NewReader("maybe\nn\n"), &out),
		Out:       &out,
		Logger:    quietLogger(),
	}, RunConfig{Mode: models.ModeIntensive})
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), "ac")
	require.ErrorIs(t, err, ErrAborted)
	require.Equal(t, StateAborted, r.State())
	require.Zero(t, summary.Generated)
	require.Zero(t, sink.Written())
	require.NotContains(t, out.String(), "Batch 1:")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunWritesResultsFile(t *testing.T) {
	dir := t.TempDir()
	sink := storage.NewResultsFile(dir, "ac", quietLogger())

	r, err := NewRunner(RunnerDeps{
		Generator: testGenerator(),
		Encoder:   fakeEncoder{},
		Sink:      sink,
		Logger:    quietLogger(),
	}, RunConfig{})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "ac")
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	got, err := storage.ReadResults(filepath.Join(dir, "ac.txt"))
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, models.Variant{Candidate: "αс", Encoded: "enc:αс"}, got[3])
}

func TestRunFilterAndMetrics(t *testing.T) {
	metrics := utils.NewMetricsCollector(false)
	require.NoError(t, metrics.RegisterHomographMetrics())

	sink := &memorySink{}
	r, err := NewRunner(RunnerDeps{
		Generator: testGenerator(),
		Encoder:   fakeEncoder{},
		Sink:      sink,
		Filter:    rejectAll{},
		Metrics:   metrics,
		Logger:    quietLogger(),
	}, RunConfig{})
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), "ac")
	require.NoError(t, err)
	require.Empty(t, sink.variants)
	require.EqualValues(t, 4, summary.Filtered)

	snap, err := metrics.Snapshot()
	require.NoError(t, err)
	require.Equal(t, 4.0, snap[utils.MetricCandidates])
	require.Equal(t, 4.0, snap[utils.MetricFiltered])
	require.Equal(t, 4.0, snap[utils.MetricCombinations])
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &memorySink{}
	r, err := NewRunner(RunnerDeps{
		Generator: testGenerator(),
		Encoder:   fakeEncoder{},
		Sink:      sink,
		Logger:    quietLogger(),
	}, RunConfig{})
	require.NoError(t, err)

	summary, err := r.Run(ctx, "ac")
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, summary.Interrupted)
	require.Empty(t, sink.variants)
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(RunnerDeps{}, RunConfig{})
	require.Error(t, err)

	_, err = NewRunner(RunnerDeps{Generator: testGenerator(), Encoder: fakeEncoder{}, Sink: &memorySink{}},
		RunConfig{Mode: models.ModeIntensive})
	require.Error(t, err)

	_, err = NewRunner(RunnerDeps{Generator: testGenerator(), Encoder: fakeEncoder{}, Sink: &memorySink{}},
		RunConfig{Mode: "eager"})
	var modeErr *models.InvalidModeError
	require.ErrorAs(t, err, &modeErr)
}
