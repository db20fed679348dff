package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"

	"github.com/bl4ck0w1/homolynx/pkg/models"
	"github.com/bl4ck0w1/homolynx/pkg/utils"
)

var ErrLocked = errors.New("results file is in use by another run")

// ResultsFile appends "<candidate>,<punycode>" lines to <dir>/<domain>.txt.
// Each write opens, appends and closes the file so that everything written
// before an interruption survives. Nothing touches the disk before the first
// Write.
type ResultsFile struct {
	dir    string
	path   string
	logger *logrus.Logger

	mu      sync.Mutex
	lock    *flock.Flock
	written int64
}

func NewResultsFile(dir, domain string, logger *logrus.Logger) *ResultsFile {
	if logger == nil {
		logger = logrus.New()
	}
	if dir == "" {
		dir = "."
	}
	return &ResultsFile{
		dir:    dir,
		path:   filepath.Join(dir, utils.ResultsFileName(domain)),
		logger: logger,
	}
}

func (rf *ResultsFile) Path() string { return rf.path }

func (rf *ResultsFile) Written() int64 {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.written
}

func (rf *ResultsFile) Write(v models.Variant) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.lock == nil {
		if err := rf.acquire(); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(rf.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}
	if _, err := f.WriteString(v.String() + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("write results file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close results file: %w", err)
	}
	rf.written++
	return nil
}

func (rf *ResultsFile) acquire() error {
	if err := utils.EnsureDir(rf.dir); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(rf.path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock results file: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, rf.path)
	}
	rf.lock = lock
	rf.logger.Debugf("Writing results to %s", rf.path)
	return nil
}

// Close releases the lock taken by the first Write, if any.
func (rf *ResultsFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.lock == nil {
		return nil
	}
	err := rf.lock.Unlock()
	_ = os.Remove(rf.lock.Path())
	rf.lock = nil
	return err
}

// ReadResults parses a results file back into variants.
func ReadResults(path string) ([]models.Variant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []models.Variant
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		idx := strings.LastIndex(line, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed results line %q", line)
		}
		out = append(out, models.Variant{Candidate: line[:idx], Encoded: line[idx+1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan results file %s: %w", path, err)
	}
	return out, nil
}
