package rag

// Request is one retrieval-augmented query against a container.
type Request struct {
	Backend   string `json:"backend"`
	Container string `json:"index_name"`
	Query     string `json:"query"`
	TopK      int    `json:"top_k"`
	Category  string `json:"category,omitempty"`
}

// Context is one retrieved chunk returned alongside the answer. Score is
// backend-relative; ordering is meaningful within one response, comparing
// scores across backends is not.
type Context struct {
	ChunkID     string  `json:"chunk_id"`
	DocID       string  `json:"doc_id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	TextSnippet string  `json:"text_snippet"`
	Score       float32 `json:"score"`
}

// Response is the generated answer plus the contexts it drew from.
type Response struct {
	Query    string    `json:"query"`
	Answer   string    `json:"answer"`
	Contexts []Context `json:"contexts"`
	TopK     int       `json:"top_k"`
	Backend  string    `json:"backend"`
}
