package domain

// Trigger is a static (category, phrase, confirmation) tuple from the
// trigger table. Specialized marks categories that run a specialized task
// flow instead of plain retrieval.
type Trigger struct {
	Category     Category `yaml:"category"`
	Phrase       string   `yaml:"phrase"`
	Confirmation string   `yaml:"confirmation"`
	Specialized  bool     `yaml:"specialized,omitempty"`
}

// PreparedTrigger pairs a trigger with its phrase embedding, computed once
// at startup. Immutable after initialization.
type PreparedTrigger struct {
	Trigger
	Vector []float32
}

// TriggerTable preserves the declaration order of the trigger file; ties
// between equal similarities are broken by position.
type TriggerTable []PreparedTrigger
