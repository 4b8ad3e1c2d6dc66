package board

import (
	"fmt"
	"slices"
	"strings"

	"github.com/steveyegge/pmc/internal/types"
)

// seedRisks are the example risks offered on an empty risk board
var seedRisks = []struct {
	Title      string
	Impact     types.Level
	Likelihood types.Level
}{
	{"Scope creep without change control", types.LevelHigh, types.LevelMedium},
	{"Key dependency delay (vendor/API)", types.LevelMedium, types.LevelMedium},
	{"Single-point-of-failure on staff", types.LevelHigh, types.LevelLow},
}

// SortRisks returns a copy of risks ordered by descending score.
// Equal scores keep their original order.
func SortRisks(risks []types.Risk) []types.Risk {
	out := slices.Clone(risks)
	slices.SortStableFunc(out, func(a, b types.Risk) int {
		return b.Score() - a.Score()
	})
	return out
}

// AddRisk appends an open risk with no mitigation
func AddRisk(p types.Project, title string, impact, likelihood types.Level) (types.ProjectPatch, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.ProjectPatch{}, ErrEmptyTitle
	}
	risks := append(slices.Clone(p.Risks), newRisk(title, impact, likelihood))
	return types.PatchRisks(risks), nil
}

// SeedRisks appends the three example risks
func SeedRisks(p types.Project) types.ProjectPatch {
	risks := slices.Clone(p.Risks)
	for _, r := range seedRisks {
		risks = append(risks, newRisk(r.Title, r.Impact, r.Likelihood))
	}
	return types.PatchRisks(risks)
}

// SetRiskOpen marks a risk open or closed
func SetRiskOpen(p types.Project, id string, open bool) (types.ProjectPatch, error) {
	return updateRisk(p, id, func(r *types.Risk) { r.Open = open })
}

// SetMitigation replaces a risk's mitigation text
func SetMitigation(p types.Project, id, mitigation string) (types.ProjectPatch, error) {
	return updateRisk(p, id, func(r *types.Risk) { r.Mitigation = mitigation })
}

// RemoveRisk deletes one risk
func RemoveRisk(p types.Project, id string) (types.ProjectPatch, error) {
	i := slices.IndexFunc(p.Risks, func(r types.Risk) bool { return r.ID == id })
	if i < 0 {
		return types.ProjectPatch{}, fmt.Errorf("risk %s: %w", id, ErrNotFound)
	}
	return types.PatchRisks(slices.Delete(slices.Clone(p.Risks), i, i+1)), nil
}

func newRisk(title string, impact, likelihood types.Level) types.Risk {
	return types.Risk{
		ID:         newID(),
		Title:      title,
		Impact:     impact,
		Likelihood: likelihood,
		Open:       true,
	}
}

func updateRisk(p types.Project, id string, fn func(*types.Risk)) (types.ProjectPatch, error) {
	risks := slices.Clone(p.Risks)
	for i := range risks {
		if risks[i].ID == id {
			fn(&risks[i])
			return types.PatchRisks(risks), nil
		}
	}
	return types.ProjectPatch{}, fmt.Errorf("risk %s: %w", id, ErrNotFound)
}
