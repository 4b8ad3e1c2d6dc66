package types

import "strings"

// Risk is something that might go wrong, rated on two ordinal axes
type Risk struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Impact     Level  `json:"impact"`
	Likelihood Level  `json:"likelihood"`
	Mitigation string `json:"mitigation"`
	Open       bool   `json:"open"`
}

// Score is ordinal(impact) × ordinal(likelihood), in [1,9].
// It only drives display order.
func (r Risk) Score() int {
	return r.Impact.Ordinal() * r.Likelihood.Ordinal()
}

// Level is a Low/Medium/High rating
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Levels lists every level from lowest to highest
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

// IsValid checks if the level value is valid
func (l Level) IsValid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// Ordinal returns 1, 2 or 3. Unknown values rank with Low.
func (l Level) Ordinal() int {
	switch l {
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	default:
		return 1
	}
}

// ParseLevel accepts a level name in any case
func ParseLevel(s string) (Level, bool) {
	for _, l := range Levels {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}
