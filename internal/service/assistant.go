// Package service answers questions about the course catalog.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"courserag/internal/apperrors"
	"courserag/internal/corpus"
	"courserag/internal/courseindex"
	"courserag/internal/coursecode"
	"courserag/internal/domain"
)

// DefaultTopK is how many similar documents ground each answer.
const DefaultTopK = 5

const systemPromptTemplate = "Answer the question [%s] using the following context. ONLY USE CONTEXT, DO NOT USE YOUR OWN INFORMATION:"

// Answer is a grounded reply and the texts it was grounded on.
type Answer struct {
	Reply     string   `json:"reply"`
	Retrieved []string `json:"retrieved_documents"`
}

// Deps are the collaborators of an Assistant. Courses and Completer may be nil:
// without Courses only the similarity index grounds answers, and without a
// Completer every answer fails as unavailable.
type Deps struct {
	Courses    *courseindex.Index
	Similarity domain.SimilarityIndex
	Completer  domain.Completer
	Builder    *corpus.Builder
	Subject    string
	TopK       int
	Logger     zerolog.Logger
}

// Assistant composes the course index, the similarity index and the
// completion function.
type Assistant struct {
	courses    *courseindex.Index
	similarity domain.SimilarityIndex
	completer  domain.Completer
	builder    *corpus.Builder
	scanner    *coursecode.Scanner
	topK       int
	log        zerolog.Logger
}

func NewAssistant(d Deps) *Assistant {
	if d.TopK <= 0 {
		d.TopK = DefaultTopK
	}
	if d.Builder == nil {
		d.Builder = corpus.NewBuilder()
	}
	subject := d.Subject
	if subject == "" {
		subject = "CS"
	}
	return &Assistant{
		courses:    d.Courses,
		similarity: d.Similarity,
		completer:  d.Completer,
		builder:    d.Builder,
		scanner:    coursecode.NewScanner(subject),
		topK:       d.TopK,
		log:        d.Logger,
	}
}

// CompletionAvailable reports whether a completion function is configured.
func (a *Assistant) CompletionAvailable() bool { return a.completer != nil }

// Answer retrieves grounding context for question and asks the completion
// function to answer from it alone. Zero hits still reach the completer with
// an empty context.
func (a *Assistant) Answer(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, apperrors.NewValidationError("question is required", map[string]string{"message": "required"})
	}
	if a.completer == nil {
		return Answer{}, apperrors.NewUnavailableError("completion", nil)
	}

	retrieved, err := a.retrieve(ctx, question)
	if err != nil {
		return Answer{}, err
	}

	system := fmt.Sprintf(systemPromptTemplate, question)
	reply, err := a.completer.Complete(ctx, system, strings.Join(retrieved, "\n\n"))
	if err != nil {
		a.log.Error().Err(err).Msg("completion failed")
		return Answer{}, apperrors.NewUnavailableError("completion", err)
	}
	return Answer{Reply: reply, Retrieved: retrieved}, nil
}

// Complete forwards a raw prompt to the completion function.
func (a *Assistant) Complete(ctx context.Context, system, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperrors.NewValidationError("message is required", map[string]string{"message": "required"})
	}
	if a.completer == nil {
		return "", apperrors.NewUnavailableError("completion", nil)
	}
	reply, err := a.completer.Complete(ctx, system, message)
	if err != nil {
		return "", apperrors.NewUnavailableError("completion", err)
	}
	return reply, nil
}

// retrieve returns the texts of courses named in the question followed by
// the top similarity hits, without duplicates.
func (a *Assistant) retrieve(ctx context.Context, question string) ([]string, error) {
	seen := map[string]struct{}{}
	out := []string{}
	add := func(id, text string) {
		if _, dup := seen[id]; dup || text == "" {
			return
		}
		seen[id] = struct{}{}
		out = append(out, text)
	}

	if a.courses != nil {
		for _, code := range a.scanner.FindAll(question) {
			if c, ok := a.courses.Get(code); ok {
				doc := corpus.CourseDocument(c.Code, a.builder.CourseText(c))
				add(doc.ID, doc.Text)
			}
		}
	}

	if a.similarity == nil {
		return nil, apperrors.NewUnavailableError("similarity index", nil)
	}
	hits, err := a.similarity.Query(ctx, question, a.topK)
	if err != nil {
		a.log.Error().Err(err).Msg("similarity query failed")
		return nil, apperrors.NewUnavailableError("similarity index", err)
	}
	for _, h := range hits {
		add(h.Document.ID, h.Document.Text)
	}
	return out, nil
}
