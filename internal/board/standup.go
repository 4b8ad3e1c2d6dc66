package board

import (
	"strings"
	"time"

	"github.com/steveyegge/pmc/internal/types"
)

// AddStandup prepends a stand-up dated with now's UTC calendar date.
// Stand-ups are never edited or removed once recorded.
func AddStandup(p types.Project, now time.Time, yesterday, today, blockers string) types.ProjectPatch {
	s := types.Standup{
		ID:        newID(),
		Date:      now.UTC().Format(time.DateOnly),
		Yesterday: yesterday,
		Today:     today,
		Blockers:  blockers,
	}
	standups := make([]types.Standup, 0, len(p.Standups)+1)
	standups = append(standups, s)
	standups = append(standups, p.Standups...)
	return types.PatchStandups(standups)
}

// ParseStakeholders splits a comma-separated list, trimming entries and
// dropping empty ones. Order and duplicates are kept.
func ParseStakeholders(input string) []string {
	out := []string{}
	for _, s := range strings.Split(input, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FormatStakeholders is the inverse of ParseStakeholders for display
func FormatStakeholders(s []string) string {
	return strings.Join(s, ", ")
}
