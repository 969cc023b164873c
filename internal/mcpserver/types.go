package mcpserver

// ComposeInput is the input for the compose_documents tool.
type ComposeInput struct {
	Base        string   `json:"base" jsonschema:"id of the base document"`
	Preferences []string `json:"preferences,omitempty" jsonschema:"preference document ids, applied in order"`
	Separator   *string  `json:"separator,omitempty" jsonschema:"text placed between documents (default: the configured separator)"`
	Digest      bool     `json:"digest,omitempty" jsonschema:"also return the content identifier of the composed text"`
}

// ComposeOutput is the result of compose_documents. Status is "ok" or the
// failure kind (base_not_found, unreadable, invalid_request, error).
type ComposeOutput struct {
	Status      string   `json:"status"`
	Text        string   `json:"text,omitempty"`
	SourceOrder []string `json:"sourceOrder,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Digest      string   `json:"digest,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// ListInput is the input for the list_documents tool.
type ListInput struct {
	Role string `json:"role,omitempty" jsonschema:"filter by role: base or preference"`
}

// DocumentInfo describes one catalog entry.
type DocumentInfo struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Path        string `json:"path"`
	Module      string `json:"module,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`
	Status      string `json:"status"`
}

// ListOutput is the result of list_documents.
type ListOutput struct {
	Documents []DocumentInfo `json:"documents"`
}

// ValidateInput is the input for the validate_request tool.
type ValidateInput struct {
	Base        string   `json:"base" jsonschema:"id of the base document"`
	Preferences []string `json:"preferences,omitempty" jsonschema:"preference document ids, applied in order"`
}

// ValidateOutput reports request findings and whether each id resolves.
type ValidateOutput struct {
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Unresolved []string `json:"unresolved,omitempty"`
}
