package domain

import "time"

// Document is the catalog record created on successful ingestion. It is
// never mutated; deletion removes both the record and every chunk the
// document contributed to the index.
type Document struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	Scope        Scope     `json:"scope"`
	ChunkCount   int       `json:"chunk_count"`
	UploadedBy   string    `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileUpload describes one uploaded file sitting in temporary storage.
// The declared MIME type comes from the client and is only a secondary
// hint; dispatch keys off the filename extension.
type FileUpload struct {
	Path             string
	DeclaredMIMEType string
	OriginalName     string
}
