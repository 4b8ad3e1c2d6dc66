package types

// Standup is one immutable daily stand-up entry
type Standup struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Yesterday string `json:"yesterday"`
	Today     string `json:"today"`
	Blockers  string `json:"blockers"`
}
