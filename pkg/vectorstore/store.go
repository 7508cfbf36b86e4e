package vectorstore

import (
	"context"

	"contextllm-be/internal/model"
	"contextllm-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Fragment is one scored retrieval result
type Fragment struct {
	Text  string
	Score float64
}

// SimilarityIndex is the capability contract the context pipeline
// consumes. Querying an empty index returns an empty list, not an error.
type SimilarityIndex interface {
	Upsert(ctx context.Context, callerId string, texts []string) error
	Query(ctx context.Context, callerId string, text string, topK int) ([]Fragment, error)
}

// PgVectorStore stores fragments in Postgres with pgvector cosine search,
// scoped per caller identity.
type PgVectorStore struct {
	db                *gorm.DB
	embeddingProvider embedding.EmbeddingProvider
}

var _ SimilarityIndex = &PgVectorStore{}

func NewPgVectorStore(db *gorm.DB, embeddingProvider embedding.EmbeddingProvider) *PgVectorStore {
	return &PgVectorStore{
		db:                db,
		embeddingProvider: embeddingProvider,
	}
}

func (s *PgVectorStore) Upsert(ctx context.Context, callerId string, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	fragments := make([]*model.MemoryFragment, 0, len(texts))
	for _, text := range texts {
		if text == "" {
			continue
		}
		res, err := s.embeddingProvider.Generate(text, embedding.TaskTypeDocument)
		if err != nil {
			return err
		}
		fragments = append(fragments, &model.MemoryFragment{
			Id:             uuid.New(),
			CallerId:       callerId,
			Document:       text,
			EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
		})
	}
	if len(fragments) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Create(fragments).Error
}

func (s *PgVectorStore) Query(ctx context.Context, callerId string, text string, topK int) ([]Fragment, error) {
	if topK <= 0 {
		topK = 3
	}

	res, err := s.embeddingProvider.Generate(text, embedding.TaskTypeQuery)
	if err != nil {
		return nil, err
	}
	queryVector := pgvector.NewVector(res.Embedding.Values)

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding_value <=> query) recovers the similarity score
	type result struct {
		Document   string
		Similarity float64
	}
	var results []result

	err = s.db.WithContext(ctx).
		Table("memory_fragments").
		Select("document, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("caller_id = ?", callerId).
		Where("deleted_at IS NULL").
		Order("similarity DESC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	fragments := make([]Fragment, len(results))
	for i, r := range results {
		fragments[i] = Fragment{
			Text:  r.Document,
			Score: r.Similarity,
		}
	}
	return fragments, nil
}
