package board

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/steveyegge/pmc/internal/types"
)

// Completion is the rounded percentage of tasks marked done.
// An empty list reads as 0%.
func Completion(tasks []types.Task) int {
	total := len(tasks)
	if total == 0 {
		total = 1
	}
	done := 0
	for _, t := range tasks {
		if t.Status == types.StatusDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// DateOrBlank renders an empty date as an em dash for timeline rows
func DateOrBlank(d string) string {
	if d == "" {
		return "—"
	}
	return d
}

// ParseDate checks a YYYY-MM-DD date typed by the user. Blank input and "-"
// clear the date and return "".
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return "", nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return s, nil
}
