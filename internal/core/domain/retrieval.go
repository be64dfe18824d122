package domain

// ChunkRecord is one (id, vector, metadata) triple handed to the vector
// index. IDs follow "{documentId}_chunk_{sequenceIndex}".
type ChunkRecord struct {
	ID            string
	Vector        []float32
	DocumentID    string
	OriginalName  string
	SequenceIndex int
	Text          string
}

// ScopeFilter restricts a nearest-neighbor query to an allowed document-id
// set. An empty set means nothing is searchable.
type ScopeFilter struct {
	DocumentIDs []string
}

// RetrievedFragment is one scored chunk text returned by the index, highest
// score first.
type RetrievedFragment struct {
	DocumentID   string  `json:"document_id"`
	OriginalName string  `json:"original_name"`
	Text         string  `json:"text"`
	Score        float64 `json:"score"`
}
