package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courserag/internal/domain"
	"courserag/internal/service"
)

type fakeAsker struct {
	ans       service.Answer
	err       error
	available bool
}

func (f fakeAsker) Answer(context.Context, string) (service.Answer, error) { return f.ans, f.err }
func (f fakeAsker) CompletionAvailable() bool                             { return f.available }

type fakeSearcher struct{ hits []domain.SearchResult }

func (f fakeSearcher) Query(context.Context, string, int) ([]domain.SearchResult, error) {
	return f.hits, nil
}

func typeAndSubmit(t *testing.T, m Model, q string) Model {
	t.Helper()
	m.input.SetValue(q)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.True(t, m.busy)
	next, _ = m.Update(cmd())
	return next.(Model)
}

func TestAskMode_ShowsReplyAndSources(t *testing.T) {
	m := New(fakeAsker{available: true, ans: service.Answer{Reply: "Ada teaches it.", Retrieved: []string{"CS 210: Data Structures.", "Ada teaches CS 210."}}}, nil, "2 courses")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = typeAndSubmit(t, next.(Model), "who teaches cs 210")

	assert.False(t, m.busy)
	assert.Equal(t, "Ada teaches it.", m.reply)
	require.Len(t, m.results, 2)
	assert.Contains(t, m.renderCurrentResult(), "Source 1/2")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, next.(Model).cursor)
}

func TestAskMode_Error(t *testing.T) {
	m := New(fakeAsker{available: true, err: errors.New("completion unavailable")}, nil, "")
	m = typeAndSubmit(t, m, "hi")
	assert.True(t, strings.HasPrefix(m.status, "Error:"))
	assert.Empty(t, m.results)
}

func TestSearchModeWithoutCompletion(t *testing.T) {
	s := fakeSearcher{hits: []domain.SearchResult{{Document: domain.Document{Text: "Graphs."}, Score: 0.5}}}
	m := New(fakeAsker{}, s, "")
	assert.Contains(t, m.status, "search results only")
	m = typeAndSubmit(t, m, "graphs")
	require.Len(t, m.results, 1)
	assert.Contains(t, m.renderCurrentResult(), "score=0.500")
}

func TestHighlightBestSentence(t *testing.T) {
	out := highlightBestSentence("Loops are covered. Trees and graphs too.", "graphs")
	assert.Contains(t, out, "Loops are covered.")
	assert.Contains(t, out, "graphs too.")
	assert.Equal(t, "", highlightBestSentence("", "x"))
}
