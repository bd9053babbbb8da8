package api

// Etext is a stored record in a transport-friendly format.
type Etext struct {
	ID       int    `json:"id"`
	Author   string `json:"author,omitempty"`
	Title    string `json:"title,omitempty"`
	FullText string `json:"fullText"`
}

// EtextSummary describes a stored record without its text.
type EtextSummary struct {
	ID       int    `json:"id"`
	Author   string `json:"author,omitempty"`
	Title    string `json:"title,omitempty"`
	TextSize int    `json:"textSize"`
}

// EtextListResponse wraps a page of summaries.
type EtextListResponse struct {
	Items  []EtextSummary `json:"items"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

// EtextResponse wraps a single record.
type EtextResponse struct {
	Item Etext `json:"item"`
}

// CorpusStats summarizes the stored corpus.
type CorpusStats struct {
	Total         int `json:"total"`
	MissingAuthor int `json:"missingAuthor"`
	MissingTitle  int `json:"missingTitle"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
