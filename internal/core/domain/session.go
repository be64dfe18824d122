package domain

import "time"

// Session is the read model this core consumes through the session-store
// contract. Lifecycle and persistence belong to the external collaborator;
// only the fields below are visible here.
type Session struct {
	ID             string
	ActiveCategory Category
	// Documents lists the document references per category. Missing
	// categories resolve to empty lists.
	Documents map[Category][]Document
	// SearchGlobal broadens retrieval scope with the global partition.
	SearchGlobal bool
	// GlobalWrite routes newly ingested documents into the global
	// partition instead of the active category.
	GlobalWrite bool
}

// ActiveDocuments returns the document list of the active category. Always
// total: a category with no documents yields an empty slice.
func (s *Session) ActiveDocuments() []Document {
	if s == nil || s.Documents == nil {
		return nil
	}
	return s.Documents[s.ActiveCategory]
}

type MessageSender string

const (
	SenderUser      MessageSender = "user"
	SenderAssistant MessageSender = "assistant"
	SenderSystem    MessageSender = "system"
)

// Message is one transcript entry appended on chat turns and on any status
// change (category switch, ingestion summary, error).
type Message struct {
	Sender    MessageSender `json:"sender"`
	Text      string        `json:"text"`
	IsError   bool          `json:"is_error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
