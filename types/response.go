package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthStatus is the record returned by the health check. Status is
// "healthy" or "unhealthy"; any failure along the chain is captured in
// Error instead of being raised.
type HealthStatus struct {
	Status           string           `json:"status"`
	SourcesFound     int              `json:"sources_found"`
	IndexInitialized bool             `json:"index_initialized"`
	RetrieverCreated bool             `json:"retriever_created"`
	TestQueryResults int              `json:"test_query_results"`
	Error            string           `json:"error,omitempty"`
	LastIndexing     *IndexingSummary `json:"last_indexing,omitempty"`
}

// Websocket message types for the reindex progress stream.
const (
	TypeWebsocketProgress = "progress"
	TypeWebsocketSummary  = "summary"
	TypeWebsocketError    = "error"
)

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// IndexingProgress is streamed per document while a reindex runs.
type IndexingProgress struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Document  string `json:"document,omitempty"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
}
