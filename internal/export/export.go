// Package export writes a session's study material to a directory as a small
// Markdown pack.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thywilljoshua/studyaid/internal/study"
)

const (
	IndexFile      = "index.md"
	FlashcardsFile = "flashcards.md"
	QuizFile       = "quiz.md"
	MindMapFile    = "mindmap.dot"
	CorpusFile     = "corpus.txt"
)

// Pack names the session being written.
type Pack struct {
	Title   string
	Session string
	State   study.State
}

// Write renders every non-empty part of the pack into outDir and returns the
// files it wrote, index first.
func Write(outDir string, p Pack) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if p.Title == "" {
		p.Title = "Study pack"
	}

	parts := []struct {
		name string
		body string
	}{
		{IndexFile, renderIndex(p)},
		{FlashcardsFile, renderFlashcards(p.State.Flashcards)},
		{QuizFile, renderQuiz(p.State.Quiz)},
		{MindMapFile, string(p.State.MindMap)},
		{CorpusFile, p.State.Corpus.String()},
	}

	var written []string
	for _, part := range parts {
		if strings.TrimSpace(part.body) == "" {
			continue
		}
		file := filepath.Join(outDir, part.name)
		if err := os.WriteFile(file, []byte(part.body), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", part.name, err)
		}
		written = append(written, file)
	}
	return written, nil
}

func renderIndex(p Pack) string {
	st := p.State
	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: \"%s\"\n", escapeQuotes(p.Title))
	if p.Session != "" {
		fmt.Fprintf(&b, "session: \"%s\"\n", escapeQuotes(p.Session))
	}
	if !st.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "updated: %s\n", st.UpdatedAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("---\n\n# ")
	b.WriteString(p.Title)
	b.WriteString("\n\n## Documents\n\n")
	if len(st.Manifest) == 0 {
		b.WriteString("_No documents ingested._\n")
	}
	for _, label := range st.Manifest {
		fmt.Fprintf(&b, "- %s\n", label)
	}

	var contents []string
	if len(st.Flashcards) > 0 {
		contents = append(contents, fmt.Sprintf("- [Flashcards](./%s) (%d)", FlashcardsFile, len(st.Flashcards)))
	}
	if len(st.Quiz) > 0 {
		contents = append(contents, fmt.Sprintf("- [Quiz](./%s) (%d)", QuizFile, len(st.Quiz)))
	}
	if st.MindMap != "" {
		contents = append(contents, fmt.Sprintf("- [Mind map](./%s)", MindMapFile))
	}
	if len(contents) > 0 {
		b.WriteString("\n## Contents\n\n")
		b.WriteString(strings.Join(contents, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func renderFlashcards(cards []study.Flashcard) string {
	if len(cards) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("# Flashcards\n")
	for i, c := range cards {
		fmt.Fprintf(&b, "\n## %d. %s\n\n%s\n", i+1, oneLine(c.Question), c.Answer)
	}
	return b.String()
}

func renderQuiz(items []study.QuizItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("# Quiz\n")
	for i, q := range items {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, oneLine(q.Question))
		for _, o := range q.Options {
			fmt.Fprintf(&b, "- %s\n", o)
		}
		fmt.Fprintf(&b, "\n<details><summary>Answer</summary>\n\n**%s**", q.Correct)
		if q.Explain != "" {
			fmt.Fprintf(&b, " %s", q.Explain)
		}
		b.WriteString("\n\n</details>\n")
	}
	return b.String()
}

func escapeQuotes(s string) string { return strings.ReplaceAll(s, "\"", "\\\"") }

func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }
