package entity

// StructuredRequest asks the completion service to answer through a declared schema.
// With Required set the service must call the schema function and nothing else.
type StructuredRequest struct {
	System            string
	Prompt            string
	SchemaName        string
	SchemaDescription string
	Schema            map[string]any
	Required          bool
	Temperature       float32
}

// TextRequest asks the completion service for free-form text.
type TextRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Schema function names shared by the pipeline and the completion connectors
const (
	SchemaDocumentSummary = "extract_summary"
	SchemaSlideDeck       = "create_slides"
)
