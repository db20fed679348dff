package permutations

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

const fieldSeparator = "|"

// ConfusableMap maps a single base character to every character that may
// stand in for it. Each value holds the base itself first, followed by the
// other confusables in ascending codepoint order.
type ConfusableMap map[string][]string

// Substitutions returns the candidate set for r, or nil when r has no entry.
func (cm ConfusableMap) Substitutions(r rune) []string {
	return cm[string(r)]
}

func (cm ConfusableMap) Keys() []string {
	keys := make([]string, 0, len(cm))
	for k := range cm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal compares two maps as sets, ignoring the order inside each value.
func (cm ConfusableMap) Equal(other ConfusableMap) bool {
	if len(cm) != len(other) {
		return false
	}
	for k, vs := range cm {
		ws, ok := other[k]
		if !ok || len(vs) != len(ws) {
			return false
		}
		set := make(map[string]struct{}, len(ws))
		for _, w := range ws {
			set[w] = struct{}{}
		}
		for _, v := range vs {
			if _, ok := set[v]; !ok {
				return false
			}
		}
	}
	return true
}

type BuildReport struct {
	Path        string
	Entries     int
	Dropped     int
	Skipped     int
	Fingerprint uint64
}

type WordlistManager struct {
	logger *logrus.Logger
}

func NewWordlistManager(logger *logrus.Logger) *WordlistManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &WordlistManager{logger: logger}
}

// Load reads the wordlist at path and builds its ConfusableMap. A missing
// file yields a *ConfigNotFoundError, any other read failure a *ConfigReadError.
func (wm *WordlistManager) Load(path string) (ConfusableMap, BuildReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, BuildReport{Path: path}, &ConfigNotFoundError{Path: path, Err: err}
		}
		return nil, BuildReport{Path: path}, &ConfigReadError{Path: path, Err: err}
	}

	cm, report := wm.Parse(string(data))
	report.Path = path
	wm.logger.WithFields(logrus.Fields{
		"path":        path,
		"entries":     report.Entries,
		"dropped":     report.Dropped,
		"skipped":     report.Skipped,
		"fingerprint": report.Fingerprint,
	}).Debug("Loaded confusable wordlist")
	return cm, report, nil
}

func (wm *WordlistManager) Parse(content string) (ConfusableMap, BuildReport) {
	report := BuildReport{Fingerprint: xxh3.HashString(content)}
	cm := make(ConfusableMap)

	content = strings.TrimSpace(content)
	if content == "" {
		return cm, report
	}

	for n, line := range strings.Split(content, "\n") {
		line = strings.Trim(line, " \t\r")
		if line == "" {
			continue
		}

		if utf8.RuneCountInString(line) == 1 {
			cm[line] = []string{line}
			continue
		}

		fields := strings.Split(line, fieldSeparator)
		key := strings.TrimSpace(fields[0])
		if utf8.RuneCountInString(key) != 1 {
			wm.logger.Warnf("Skipping wordlist line %d: key %q is not a single character", n+1, key)
			report.Skipped++
			continue
		}

		chars := make([]string, 0, len(fields))
		for _, hex := range fields[1:] {
			ch, err := DecodeCodepoint(hex)
			if err != nil {
				wm.logger.Debugf("Dropping entry on wordlist line %d: %v", n+1, err)
				report.Dropped++
				continue
			}
			chars = append(chars, ch)
		}
		cm[key] = confusableSet(key, chars)
	}

	report.Entries = len(cm)
	return cm, report
}

func confusableSet(base string, chars []string) []string {
	seen := map[string]struct{}{base: {}}
	rest := make([]string, 0, len(chars))
	for _, c := range chars {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		rest = append(rest, c)
	}
	sort.Slice(rest, func(i, j int) bool {
		ri, _ := utf8.DecodeRuneInString(rest[i])
		rj, _ := utf8.DecodeRuneInString(rest[j])
		return ri < rj
	})
	return append([]string{base}, rest...)
}
