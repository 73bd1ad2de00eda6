package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"courserag/internal/apperrors"
	"courserag/internal/config"
	"courserag/internal/corpus"
	"courserag/internal/courseindex"
	"courserag/internal/domain"
	"courserag/internal/embedding"
	"courserag/internal/llm"
	"courserag/internal/logger"
	"courserag/internal/service"
	"courserag/internal/snapshot"
	"courserag/internal/summarizer"
	"courserag/internal/vectorstore"
)

func newBuilder(c *config.AppConfig) (*corpus.Builder, error) {
	opts := []corpus.Option{corpus.WithInstitution(c.Catalog.Institution)}
	switch c.Summarizer.Type {
	case "", "none":
	case "frequency":
		opts = append(opts, corpus.WithSummarizer(summarizer.NewFrequencySummarizer(), c.Summarizer.MaxSentences))
	default:
		return nil, fmt.Errorf("unknown summarizer type %q", c.Summarizer.Type)
	}
	return corpus.NewBuilder(opts...), nil
}

// courseSource reads whichever of the JSON dataset and its bbolt mirror was
// written last, deciding on every load. build writes the JSON first, so a
// reload fired between the two writes still sees the new data.
func courseSource(c *config.AppConfig) courseindex.Source {
	file := snapshot.CourseFile{Path: c.Data.Courses}
	if c.Data.Bolt == "" {
		return file
	}
	boltPath := c.Data.Bolt
	return courseindex.SourceFunc(func(ctx context.Context) ([]domain.Course, error) {
		if !newer(boltPath, file.Path) {
			return file.Load(ctx)
		}
		store, err := snapshot.OpenBolt(boltPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx)
	})
}

// newer reports whether a exists and is at least as recent as b.
func newer(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return true
	}
	return !ai.ModTime().Before(bi.ModTime())
}

func loadInstructorRecords(c *config.AppConfig, log zerolog.Logger) ([]domain.Instructor, error) {
	if c.Data.InstructorRecords == "" {
		return nil, nil
	}
	recs, err := snapshot.ReadJSON[[]domain.Instructor](c.Data.InstructorRecords)
	if errors.Is(err, apperrors.ErrSnapshotMissing) {
		log.Warn().Str("path", c.Data.InstructorRecords).Msg("instructor records missing; indexing courses only")
		return nil, nil
	}
	return recs, err
}

func newCompleter(c *config.AppConfig) (domain.Completer, error) {
	if !c.LLM.Enabled() {
		return nil, nil
	}
	return llm.NewClient(llm.Config{
		BaseURL:    c.LLM.BaseURL,
		APIKey:     c.LLM.APIKey,
		Model:      c.LLM.Model,
		Timeout:    time.Duration(c.LLM.TimeoutSecs) * time.Second,
		MaxRetries: c.LLM.MaxRetries,
	})
}

// stack is everything the ask and serve commands share.
type stack struct {
	courses   *courseindex.Index
	retriever *service.Retriever
	assistant *service.Assistant
	builder   *corpus.Builder
	log       zerolog.Logger
}

func newStack(ctx context.Context, c *config.AppConfig) (*stack, error) {
	log := logger.WithComponent("catalog")
	builder, err := newBuilder(c)
	if err != nil {
		return nil, err
	}
	courses, err := courseindex.New(ctx, courseSource(c), logger.WithComponent("courseindex"))
	if err != nil {
		return nil, fmt.Errorf("load course index: %w", err)
	}
	emb, err := embedding.New(c.Embedder)
	if err != nil {
		return nil, err
	}
	store, err := vectorstore.New(c.VectorStore)
	if err != nil {
		return nil, err
	}
	s := &stack{
		courses:   courses,
		retriever: service.NewRetriever(emb, store, logger.WithComponent("retriever")),
		builder:   builder,
		log:       log,
	}
	if err := s.reindex(ctx, c); err != nil {
		return nil, err
	}

	completer, err := newCompleter(c)
	if err != nil {
		return nil, err
	}
	deps := service.Deps{
		Courses:    courses,
		Similarity: s.retriever,
		Builder:    builder,
		Subject:    c.Catalog.Subject,
		TopK:       c.Retrieval.TopK,
		Logger:     logger.WithComponent("assistant"),
	}
	if completer != nil {
		deps.Completer = completer
	} else {
		log.Warn().Msg("LITELLM_API_BASE or LITELLM_MODEL_NAME unset; completion disabled")
	}
	s.assistant = service.NewAssistant(deps)
	return s, nil
}

// reindex rebuilds the similarity index from the current course index and
// the instructor records on disk.
func (s *stack) reindex(ctx context.Context, c *config.AppConfig) error {
	instructors, err := loadInstructorRecords(c, s.log)
	if err != nil {
		return err
	}
	docs := s.builder.Documents(s.courses.All(), instructors)
	if err := s.retriever.Index(ctx, docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}
	return nil
}

// reload refreshes the course index and then the similarity index.
func (s *stack) reload(ctx context.Context, c *config.AppConfig) error {
	if err := s.courses.Reload(ctx); err != nil {
		return err
	}
	return s.reindex(ctx, c)
}
