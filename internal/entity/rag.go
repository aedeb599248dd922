package entity

// RAGResponsesRequest is a single-shot grounded retrieval call
type RAGResponsesRequest struct {
	Model        string              `json:"model"`
	Instructions string              `json:"instructions,omitempty"`
	Input        string              `json:"input"`
	Tools        []RAGFileSearchTool `json:"tools"`
	ToolChoice   RAGToolChoice       `json:"tool_choice"`
}

type RAGFileSearchTool struct {
	Type           string   `json:"type"`
	VectorStoreIDs []string `json:"vector_store_ids"`
	MaxNumResults  int      `json:"max_num_results,omitempty"`
}

type RAGToolChoice struct {
	Type string `json:"type"`
}

type RAGResponsesResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output []RAGOutputItem `json:"output"`
}

type RAGOutputItem struct {
	Type    string           `json:"type"`
	Status  string           `json:"status,omitempty"`
	Content []RAGContentPart `json:"content,omitempty"`
}

type RAGContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const RAGFileSearchToolType = "file_search"
