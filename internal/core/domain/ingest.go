package domain

type FileStatus string

const (
	FileIngested FileStatus = "ingested"
	FileSkipped  FileStatus = "skipped"
	FileFailed   FileStatus = "failed"
)

// FileOutcome is the per-file result inside one ingestion batch. Failures
// are collected here instead of aborting sibling files.
type FileOutcome struct {
	OriginalName string     `json:"original_name"`
	Status       FileStatus `json:"status"`
	DocumentID   string     `json:"document_id,omitempty"`
	ChunkCount   int        `json:"chunk_count,omitempty"`
	Reason       string     `json:"reason,omitempty"`
}

// BatchResult enumerates per-file outcomes so callers can report partial
// success ("3 of 5 processed").
type BatchResult struct {
	SessionID string        `json:"session_id"`
	Scope     Scope         `json:"scope"`
	Outcomes  []FileOutcome `json:"outcomes"`
}

func (r *BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == FileIngested {
			n++
		}
	}
	return n
}

func (r *BatchResult) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}
