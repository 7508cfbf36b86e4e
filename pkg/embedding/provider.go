package embedding

// EmbeddingProvider defines the interface for generating text embeddings.
// Vectors are returned L2-normalized so dot product equals cosine
// similarity, which both the classifier and the vector store rely on.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// Task types passed through to providers that distinguish them
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}
