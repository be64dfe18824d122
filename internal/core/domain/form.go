package domain

import "encoding/json"

// SlotResult carries one form slot's structured extraction outcome. Failed
// slots keep their entry with Error set; they are never silently omitted.
type SlotResult struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

func (r SlotResult) OK() bool { return r.Error == "" }

// FormTemplate holds the prompt template and the JSON schema description of
// one slot kind. The template must contain the SchemaPlaceholder and
// TextPlaceholder markers.
type FormTemplate struct {
	Prompt string
	Schema string
}

const (
	SchemaPlaceholder = "__JSON_SCHEMA__"
	TextPlaceholder   = "__TEXT_TO_PROCESS__"
)

// ReportConfig describes one report kind as pure data: which upload slot
// maps to which form template, and the synthesis template whose
// "_JSON_{FORM}_" placeholders receive the extracted slot JSONs.
type ReportConfig struct {
	Kind      string
	SlotForms map[string]string
	Template  string
}
