package domain

import "context"

// Document kinds produced by the corpus builder.
const (
	KindCourse     = "course"
	KindInstructor = "instructor"
	KindCustom     = "custom"
)

// Document is one unit of retrievable text, usually one per entity.
type Document struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Key  string `json:"key,omitempty"`
	Text string `json:"text"`
}

// SearchResult represents a matching document with a relevance score.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, docs []Document, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// SimilarityIndex answers nearest-text queries over an ingested corpus.
type SimilarityIndex interface {
	Index(ctx context.Context, docs []Document) error
	Add(ctx context.Context, docs []Document) error
	Query(ctx context.Context, text string, topK int) ([]SearchResult, error)
	Len() int
}

// Completer is a text completion function.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
