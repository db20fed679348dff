package models

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

type Mode string

const (
	ModeLazy      Mode = "lazy"
	ModeIntensive Mode = "intensive"
)

type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q (expected lazy or intensive)", e.Mode)
}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLazy, ModeIntensive:
		return m, nil
	case "":
		return ModeLazy, nil
	default:
		return "", &InvalidModeError{Mode: s}
	}
}

// Variant is one generated homograph and its ASCII compatible encoding.
type Variant struct {
	Candidate string
	Encoded   string
}

func (v Variant) String() string {
	return v.Candidate + "," + v.Encoded
}

type RunSummary struct {
	Domain       string
	Mode         Mode
	Combinations *big.Int
	BatchSize    int
	Batches      int
	Generated    int64
	Encoded      int64
	Skipped      int64
	Filtered     int64
	ResultsPath  string
	Interrupted  bool
	StartTime    time.Time
	EndTime      time.Time
}
