package domain

import "time"

// IngestionStatus is the event published after a batch settles. The worker
// turns it into a transcript message on the owning session.
type IngestionStatus struct {
	SessionID  string        `json:"session_id"`
	Scope      Scope         `json:"scope"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Outcomes   []FileOutcome `json:"outcomes"`
	FinishedAt time.Time     `json:"finished_at"`
}
