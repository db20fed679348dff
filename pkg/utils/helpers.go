package utils

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// BatchSlice splits slice into contiguous chunks of batchSize; the last chunk
// may be shorter. The chunks share the backing array of slice.
func BatchSlice[T any](slice []T, batchSize int) [][]T {
	if batchSize <= 0 {
		if len(slice) == 0 {
			return nil
		}
		return [][]T{slice}
	}
	var batches [][]T
	for i := 0; i < len(slice); i += batchSize {
		end := i + batchSize
		if end > len(slice) {
			end = len(slice)
		}
		batches = append(batches, slice[i:end:end])
	}
	return batches
}

func HumanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	if d < 24*time.Hour {
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	days := d / (24 * time.Hour)
	hours := (d % (24 * time.Hour)) / time.Hour
	return fmt.Sprintf("%dd %dh", days, hours)
}

// ResultsFileName is the name of the file the variants of domain are saved to.
func ResultsFileName(domain string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, domain)
	return name + ".txt"
}
