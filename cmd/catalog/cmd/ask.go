package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"courserag/internal/corpus"
	"courserag/internal/domain"
	"courserag/internal/tui"
)

var askCmd = &cobra.Command{
	Use:   "ask [notes.txt ...]",
	Short: "Ask questions in an interactive terminal",
	Long:  "Opens a terminal UI over the assistant. Extra text files are added to the similarity index first.",
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newStack(ctx, cfg)
	if err != nil {
		return err
	}

	var extra []domain.Document
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		extra = append(extra, corpus.CustomDocuments(string(data), cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)...)
	}
	if len(extra) > 0 {
		if err := s.retriever.Add(ctx, extra); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d courses, %d documents indexed. Up/Down cycles sources, Ctrl+C quits.", s.courses.Len(), s.retriever.Len())
	_, err = tea.NewProgram(tui.New(s.assistant, s.retriever, summary), tea.WithAltScreen()).Run()
	return err
}
