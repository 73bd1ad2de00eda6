// Package tui is a terminal client for asking questions about the catalog.
package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"courserag/internal/domain"
	"courserag/internal/sentence"
	"courserag/internal/service"
)

// Asker is the TUI-facing subset of the assistant.
type Asker interface {
	Answer(ctx context.Context, question string) (service.Answer, error)
	CompletionAvailable() bool
}

// Searcher ranks documents without a completion call.
type Searcher interface {
	Query(ctx context.Context, text string, topK int) ([]domain.SearchResult, error)
}

type entry struct {
	text  string
	score float64
}

type resultMsg struct {
	query   string
	reply   string
	entries []entry
	err     error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	asker     Asker
	searcher  Searcher
	timeout   time.Duration
	input     textinput.Model
	viewport  viewport.Model
	reply     string
	results   []entry
	summary   string
	status    string
	cursor    int
	ready     bool
	busy      bool
	lastQuery string
}

// New creates a TUI model. Questions go to asker when it can complete;
// otherwise the searcher's raw hits are shown.
func New(asker Asker, searcher Searcher, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about a course and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{asker: asker, searcher: searcher, timeout: 2 * time.Minute, input: ti, viewport: vp, summary: summary}
	if m.askMode() {
		m.status = "Ready. Ask a question."
	} else {
		m.status = "No completion endpoint configured; showing search results only."
	}
	return m
}

func (m Model) askMode() bool { return m.asker != nil && m.asker.CompletionAvailable() }

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case resultMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.reply = ""
			m.results = nil
		} else {
			m.status = fmt.Sprintf("Results for %q", msg.query)
			m.reply = msg.reply
			m.results = msg.entries
			m.cursor = 0
			m.lastQuery = msg.query
		}
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "Thinking..."
				return m, m.run(q)
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run performs the question off the UI goroutine.
func (m Model) run(q string) tea.Cmd {
	asker, searcher, ask, timeout := m.asker, m.searcher, m.askMode(), m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if ask {
			ans, err := asker.Answer(ctx, q)
			if err != nil {
				return resultMsg{query: q, err: err}
			}
			entries := make([]entry, len(ans.Retrieved))
			for i, text := range ans.Retrieved {
				entries[i] = entry{text: text}
			}
			return resultMsg{query: q, reply: ans.Reply, entries: entries}
		}
		if searcher == nil {
			return resultMsg{query: q, err: fmt.Errorf("nothing to search")}
		}
		hits, err := searcher.Query(ctx, q, 10)
		if err != nil {
			return resultMsg{query: q, err: err}
		}
		entries := make([]entry, len(hits))
		for i, h := range hits {
			entries[i] = entry{text: h.Document.Text, score: h.Score}
		}
		return resultMsg{query: q, entries: entries}
	}
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Course Assistant")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	var b strings.Builder
	if m.reply != "" {
		b.WriteString(replyStyle.Render(m.reply))
		b.WriteString("\n\n")
	}
	if len(m.results) == 0 {
		if m.reply == "" {
			return "No results yet."
		}
		b.WriteString("No supporting documents.")
		return b.String()
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Source %d/%d", m.cursor+1, len(m.results))
	if r.score != 0 {
		title += fmt.Sprintf("  score=%.3f", r.score)
	}
	b.WriteString(title + "\n\n" + highlightBestSentence(r.text, m.lastQuery))
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	replyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
)

func highlightBestSentence(text, query string) string {
	sentences := sentence.Split(text)
	if len(sentences) == 0 {
		return text
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := toTokenSet(sentence)
	for t := range seen {
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
