package types

import "time"

// Revision is one stored version of a settings document, as kept by file
// systems that record history.
type Revision struct {
	ID        string    `json:"history_id"`
	Path      string    `json:"path"`
	Number    int       `json:"revision"`
	Content   []byte    `json:"content"`
	WrittenAt time.Time `json:"written_at"`
}
