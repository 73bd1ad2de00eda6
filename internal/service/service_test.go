package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courserag/internal/apperrors"
	"courserag/internal/corpus"
	"courserag/internal/courseindex"
	"courserag/internal/domain"
	"courserag/internal/embedding/tfidf"
	"courserag/internal/vectorstore/memory"
)

func sampleDocs() []domain.Document {
	return []domain.Document{
		{ID: "course:CS 150", Kind: domain.KindCourse, Key: "CS 150", Text: "CS 150: Introduction to Programming. Variables, loops and functions."},
		{ID: "course:CS 210", Kind: domain.KindCourse, Key: "CS 210", Text: "CS 210: Data Structures. Lists, trees and graphs."},
		{ID: "instructor:1", Kind: domain.KindInstructor, Key: "1", Text: "Ada Lovelace is a professor who teaches CS 210."},
	}
}

func newTestRetriever(t *testing.T) *Retriever {
	t.Helper()
	r := NewRetriever(tfidf.NewEmbedder(), memory.NewStorage(), zerolog.Nop())
	require.NoError(t, r.Index(context.Background(), sampleDocs()))
	return r
}

// =============================================================================
// Retriever
// =============================================================================

func TestRetriever_QueryRanksBySimilarity(t *testing.T) {
	r := newTestRetriever(t)
	assert.Equal(t, 3, r.Len())

	res, err := r.Query(context.Background(), "trees and graphs", 2)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, "course:CS 210", res[0].Document.ID)
	assert.LessOrEqual(t, len(res), 2)
}

func TestRetriever_EmptyIndexReturnsNoHits(t *testing.T) {
	r := NewRetriever(tfidf.NewEmbedder(), memory.NewStorage(), zerolog.Nop())
	res, err := r.Query(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.NotNil(t, res)
}

func TestRetriever_UnknownVocabularyFallsBackToLexical(t *testing.T) {
	r := newTestRetriever(t)
	res, err := r.Query(context.Background(), "zebra", 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestRetriever_AddReindexesCorpusBoundEmbedder(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever(t)
	require.NoError(t, r.Add(ctx, []domain.Document{
		{ID: "custom:1", Kind: domain.KindCustom, Text: "Quantum computing basics and qubits."},
		{ID: "course:CS 150", Kind: domain.KindCourse, Key: "CS 150", Text: "CS 150: Intro to Programming in Python."},
	}))
	assert.Equal(t, 4, r.Len())

	res, err := r.Query(ctx, "qubits", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "custom:1", res[0].Document.ID)

	res, err = r.Query(ctx, "python", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Contains(t, res[0].Document.Text, "Python")
}

func TestRetriever_IndexEmptyClears(t *testing.T) {
	r := newTestRetriever(t)
	require.NoError(t, r.Index(context.Background(), nil))
	assert.Zero(t, r.Len())
}

func TestRetriever_IndexKeepsCustomDocuments(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever(t)
	require.NoError(t, r.Add(ctx, []domain.Document{
		{ID: "custom:parking", Kind: domain.KindCustom, Text: "Parking permits are sold at the transportation office."},
	}))
	require.Equal(t, 4, r.Len())

	// A catalog reload rebuilds from courses and instructors only.
	require.NoError(t, r.Index(ctx, sampleDocs()[:1]))
	assert.Equal(t, 2, r.Len())

	res, err := r.Query(ctx, "parking permits", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "custom:parking", res[0].Document.ID)

	res, err = r.Query(ctx, "graphs", 5)
	require.NoError(t, err)
	for _, hit := range res {
		assert.NotEqual(t, "course:CS 210", hit.Document.ID)
	}
}

func TestOverlapOchiai(t *testing.T) {
	q := toTokenSet("data structures")
	assert.InDelta(t, 1.0, overlapOchiai(q, "Data Structures"), 1e-9)
	assert.InDelta(t, 0.5, overlapOchiai(q, "data science"), 1e-9)
	assert.Zero(t, overlapOchiai(q, ""))
	assert.Zero(t, overlapOchiai(toTokenSet(""), "data"))
}

type fixedVectorEmbedder struct{}

func (fixedVectorEmbedder) Name() string                            { return "fixed" }
func (fixedVectorEmbedder) Prepare(context.Context, []string) error { return nil }
func (fixedVectorEmbedder) Dimension() int                          { return 2 }
func (fixedVectorEmbedder) Embed(context.Context, string) ([]float64, error) {
	return []float64{0, 0}, nil
}

func TestRetriever_ZeroQueryVectorUsesLexical(t *testing.T) {
	ctx := context.Background()
	r := NewRetriever(fixedVectorEmbedder{}, memory.NewStorage(), zerolog.Nop())
	require.NoError(t, r.Index(ctx, sampleDocs()))
	res, err := r.Query(ctx, "data structures", 5)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, "course:CS 210", res[0].Document.ID)
}

// =============================================================================
// Assistant
// =============================================================================

type fakeCompleter struct {
	system, user string
	reply        string
	err          error
	calls        int
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.reply, f.err
}

type fakeSimilarity struct {
	hits []domain.SearchResult
	err  error
}

func (f fakeSimilarity) Index(context.Context, []domain.Document) error { return nil }
func (f fakeSimilarity) Add(context.Context, []domain.Document) error   { return nil }
func (f fakeSimilarity) Len() int                                       { return len(f.hits) }
func (f fakeSimilarity) Query(context.Context, string, int) ([]domain.SearchResult, error) {
	return f.hits, f.err
}

func hit(id, text string) domain.SearchResult {
	return domain.SearchResult{Document: domain.Document{ID: id, Text: text}, Score: 1}
}

func TestAnswer_GroundsOnRetrievedText(t *testing.T) {
	llm := &fakeCompleter{reply: "CS 210 covers trees."}
	a := NewAssistant(Deps{
		Similarity: fakeSimilarity{hits: []domain.SearchResult{hit("a", "first"), hit("b", "second")}},
		Completer:  llm,
		Logger:     zerolog.Nop(),
	})

	ans, err := a.Answer(context.Background(), "  What is covered?  ")
	require.NoError(t, err)
	assert.Equal(t, "CS 210 covers trees.", ans.Reply)
	assert.Equal(t, []string{"first", "second"}, ans.Retrieved)
	assert.Equal(t, "first\n\nsecond", llm.user)
	assert.Equal(t, "Answer the question [What is covered?] using the following context. ONLY USE CONTEXT, DO NOT USE YOUR OWN INFORMATION:", llm.system)
}

func TestAnswer_ZeroHitsStillCallsCompleter(t *testing.T) {
	llm := &fakeCompleter{reply: "I don't know."}
	a := NewAssistant(Deps{Similarity: fakeSimilarity{}, Completer: llm, Logger: zerolog.Nop()})

	ans, err := a.Answer(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Equal(t, 1, llm.calls)
	assert.Empty(t, llm.user)
	assert.Empty(t, ans.Retrieved)
	assert.NotNil(t, ans.Retrieved)
}

func TestAnswer_PrependsMentionedCourses(t *testing.T) {
	idx := courseindex.FromCourses([]domain.Course{{Code: "CS 210", Name: "Data Structures"}})
	builder := corpus.NewBuilder()
	courseText := builder.CourseText(domain.Course{Code: "CS 210", Name: "Data Structures", Professors: []domain.InstructorSummary{}})
	llm := &fakeCompleter{reply: "ok"}
	a := NewAssistant(Deps{
		Courses: idx,
		Similarity: fakeSimilarity{hits: []domain.SearchResult{
			hit("course:CS 210", courseText),
			hit("instructor:1", "Ada teaches CS 210."),
		}},
		Completer: llm,
		Builder:   builder,
		Logger:    zerolog.Nop(),
	})

	ans, err := a.Answer(context.Background(), "Who teaches cs210? Is CS 999 real?")
	require.NoError(t, err)
	assert.Equal(t, []string{courseText, "Ada teaches CS 210."}, ans.Retrieved)
}

func TestAnswer_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := NewAssistant(Deps{Similarity: fakeSimilarity{}, Completer: &fakeCompleter{}}).Answer(ctx, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = NewAssistant(Deps{Similarity: fakeSimilarity{}}).Answer(ctx, "q")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)

	_, err = NewAssistant(Deps{Similarity: fakeSimilarity{err: errors.New("down")}, Completer: &fakeCompleter{}, Logger: zerolog.Nop()}).Answer(ctx, "q")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)

	_, err = NewAssistant(Deps{Completer: &fakeCompleter{}}).Answer(ctx, "q")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)

	boom := errors.New("timeout")
	_, err = NewAssistant(Deps{Similarity: fakeSimilarity{}, Completer: &fakeCompleter{err: boom}, Logger: zerolog.Nop()}).Answer(ctx, "q")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
	assert.ErrorContains(t, err, "timeout")
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	llm := &fakeCompleter{reply: "pong"}
	a := NewAssistant(Deps{Completer: llm})
	assert.True(t, a.CompletionAvailable())

	out, err := a.Complete(ctx, "sys", "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
	assert.Equal(t, "sys", llm.system)

	_, err = a.Complete(ctx, "", " ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	none := NewAssistant(Deps{})
	assert.False(t, none.CompletionAvailable())
	_, err = none.Complete(ctx, "", "ping")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}

func TestEndToEnd_WithTFIDF(t *testing.T) {
	ctx := context.Background()
	courses := []domain.Course{
		{Code: "CS 150", Name: "Introduction to Programming", Description: "Variables, loops and functions.", Professors: []domain.InstructorSummary{}},
		{Code: "CS 210", Name: "Data Structures", Description: "Lists, trees and graphs.", Professors: []domain.InstructorSummary{{ID: "1", Name: "Ada", NumRatings: 3}}},
	}
	builder := corpus.NewBuilder()
	r := NewRetriever(tfidf.NewEmbedder(), memory.NewStorage(), zerolog.Nop())
	require.NoError(t, r.Index(ctx, builder.Documents(courses, nil)))

	llm := &fakeCompleter{reply: "Ada."}
	a := NewAssistant(Deps{Courses: courseindex.FromCourses(courses), Similarity: r, Completer: llm, Builder: builder, Logger: zerolog.Nop()})
	ans, err := a.Answer(ctx, "Who teaches graphs?")
	require.NoError(t, err)
	require.NotEmpty(t, ans.Retrieved)
	assert.Contains(t, ans.Retrieved[0], "CS 210")
	assert.Len(t, ans.Retrieved, 2)
}
