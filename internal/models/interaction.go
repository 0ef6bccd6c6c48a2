// internal/models/interaction.go
package models

import "time"

// Recommendation is one ranked pick returned to the user.
type Recommendation struct {
	Company  string  `json:"company"`
	Sector   string  `json:"sector"`
	ESGScore float64 `json:"esgScore"`
}

// Interaction is one completed request/response cycle: the user's query,
// the picks, the composed prompt and the generated explanation. It is
// persisted after display; nothing feeds it back into generation.
type Interaction struct {
	ID          string           `json:"id"`
	Sector      string           `json:"sector"`
	Risk        string           `json:"risk"`
	FreeText    string           `json:"text"`
	Prompt      string           `json:"prompt"`
	Companies   []Recommendation `json:"companies"`
	Explanation string           `json:"explanation"`
	CreatedAt   time.Time        `json:"createdAt"`
}
