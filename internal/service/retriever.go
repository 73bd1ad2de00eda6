package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"courserag/internal/domain"
)

// corpusBound is implemented by embedders whose vector space is derived from
// the corpus itself; adding documents requires preparing them again.
type corpusBound interface {
	Prepared() bool
}

// Retriever is the similarity index behind the assistant. It embeds documents
// into a vector store and falls back to lexical overlap ranking when a query
// shares no vocabulary with the embedding space.
type Retriever struct {
	embedder domain.Embedder
	store    domain.VectorStore
	log      zerolog.Logger

	writeMu sync.Mutex
	mu      sync.RWMutex
	docs    []domain.Document
}

func NewRetriever(embedder domain.Embedder, store domain.VectorStore, log zerolog.Logger) *Retriever {
	return &Retriever{embedder: embedder, store: store, log: log}
}

// Index replaces the catalog corpus. Custom documents added earlier survive
// unless docs carries one with the same id.
func (r *Retriever) Index(ctx context.Context, docs []domain.Document) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.indexLocked(ctx, withCustom(docs, r.snapshot()))
}

func withCustom(docs, previous []domain.Document) []domain.Document {
	ids := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		ids[d.ID] = struct{}{}
	}
	out := append(make([]domain.Document, 0, len(docs)), docs...)
	for _, d := range previous {
		if _, ok := ids[d.ID]; ok || d.Kind != domain.KindCustom {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Add upserts docs into the corpus. Documents whose id is already indexed
// are replaced.
func (r *Retriever) Add(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	merged := r.snapshot()
	pos := make(map[string]int, len(merged))
	for i, d := range merged {
		pos[d.ID] = i
	}
	for _, d := range docs {
		if at, ok := pos[d.ID]; ok {
			merged[at] = d
			continue
		}
		pos[d.ID] = len(merged)
		merged = append(merged, d)
	}

	if _, ok := r.embedder.(corpusBound); ok || r.embedder.Dimension() == 0 {
		return r.indexLocked(ctx, merged)
	}
	vectors, err := r.embedAll(ctx, docs)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, docs, vectors); err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}
	r.setDocs(merged)
	return nil
}

func (r *Retriever) indexLocked(ctx context.Context, docs []domain.Document) error {
	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	if len(docs) == 0 {
		r.setDocs(nil)
		return nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	if err := r.embedder.Prepare(ctx, texts); err != nil {
		return fmt.Errorf("prepare %s embedder: %w", r.embedder.Name(), err)
	}
	dim := r.embedder.Dimension()
	if dim <= 0 {
		return errors.New("embedder reported no dimension")
	}
	if err := r.store.Init(ctx, dim); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	vectors, err := r.embedAll(ctx, docs)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, docs, vectors); err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}
	r.setDocs(docs)
	r.log.Info().Int("documents", len(docs)).Str("embedder", r.embedder.Name()).Int("dimension", dim).Msg("similarity index built")
	return nil
}

func (r *Retriever) embedAll(ctx context.Context, docs []domain.Document) ([][]float64, error) {
	vectors := make([][]float64, len(docs))
	for i, d := range docs {
		vec, err := r.embedder.Embed(ctx, d.Text)
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", d.ID, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Query returns up to topK documents most similar to text.
func (r *Retriever) Query(ctx context.Context, text string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	if r.Len() == 0 {
		return []domain.SearchResult{}, nil
	}
	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if isZero(vec) {
		return r.lexicalSearch(text, topK), nil
	}
	res, err := r.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, hit := range res {
		if hit.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return r.lexicalSearch(text, topK), nil
	}
	return res, nil
}

// Len returns the number of indexed documents.
func (r *Retriever) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

func (r *Retriever) snapshot() []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Document(nil), r.docs...)
}

func (r *Retriever) setDocs(docs []domain.Document) {
	r.mu.Lock()
	r.docs = docs
	r.mu.Unlock()
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// lexicalSearch ranks documents by the Ochiai coefficient between the token
// sets of the query and each document. Documents with no overlap are dropped.
func (r *Retriever) lexicalSearch(query string, topK int) []domain.SearchResult {
	docs := r.snapshot()
	qset := toTokenSet(query)
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, 0, len(docs))
	for i, d := range docs {
		if s := overlapOchiai(qset, d.Text); s > 0 {
			scores = append(scores, pair{i, s})
		}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.SearchResult, 0, topK)
	for _, p := range scores[:topK] {
		out = append(out, domain.SearchResult{Document: docs[p.idx], Score: p.score})
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func overlapOchiai(qset map[string]struct{}, text string) float64 {
	seen := toTokenSet(text)
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	inter := 0
	for t := range seen {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	// |A∩B| / sqrt(|A||B|)
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}
