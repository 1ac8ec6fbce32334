package study

import (
	"context"
	"log/slog"
	"strings"

	"github.com/thywilljoshua/studyaid/internal/ingest"
)

// Caller is the guarded model call the tutor prompts through.
type Caller interface {
	Call(ctx context.Context, prompt string) (string, error)
}

const (
	DefaultQuizCount      = 5
	MaxQuizCount          = 50
	DefaultFlashcardCount = 10
	MaxFlashcardCount     = 50
)

type Options struct {
	Language       string
	QuizCount      int
	FlashcardCount int
	Logger         *slog.Logger
}

func (o *Options) defaults() {
	if o.QuizCount <= 0 {
		o.QuizCount = DefaultQuizCount
	}
	if o.FlashcardCount <= 0 {
		o.FlashcardCount = DefaultFlashcardCount
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Tutor runs study operations against an explicit session.
type Tutor struct {
	pipe   *ingest.Pipeline
	caller Caller
	opts   Options
	logger *slog.Logger
}

func NewTutor(pipe *ingest.Pipeline, caller Caller, opts Options) *Tutor {
	opts.defaults()
	return &Tutor{pipe: pipe, caller: caller, opts: opts, logger: opts.Logger}
}

// Ingest reads items and, when anything was readable, replaces the session's corpus.
// The result is returned either way so callers can show warnings and per-file status.
func (t *Tutor) Ingest(ctx context.Context, s *Session, items []ingest.Item, progress ingest.Progress) (ingest.Result, error) {
	defer s.begin()()
	res, err := t.pipe.Ingest(ctx, items, progress)
	if err != nil {
		return res, err
	}
	if err := s.Commit(res); err != nil {
		return res, err
	}
	t.logger.Info("session corpus replaced", "session", s.ID, "files", len(res.Manifest), "bytes", res.Corpus.Len())
	return res, nil
}

// Ask answers a question from the corpus and records the exchange.
func (t *Tutor) Ask(ctx context.Context, s *Session, question string) (string, error) {
	defer s.begin()()
	corpus, err := corpusOf(s)
	if err != nil {
		return "", err
	}
	question = strings.TrimSpace(question)
	s.update(func(st *State) error {
		st.Chat = append(st.Chat, Message{Role: RoleUser, Content: question})
		return nil
	})
	reply, err := t.caller.Call(ctx, askPrompt(corpus, question, t.opts.Language))
	if err != nil {
		return "", err
	}
	s.update(func(st *State) error {
		st.Chat = append(st.Chat, Message{Role: RoleAssistant, Content: reply})
		return nil
	})
	return reply, nil
}

// Quiz generates n questions (clamped to 1..50, 0 means the configured default).
// On any failure the previous quiz stays in place.
func (t *Tutor) Quiz(ctx context.Context, s *Session, n int) ([]QuizItem, error) {
	defer s.begin()()
	corpus, err := corpusOf(s)
	if err != nil {
		return nil, err
	}
	n = clamp(n, t.opts.QuizCount, MaxQuizCount)
	reply, err := t.caller.Call(ctx, quizPrompt(corpus, n, t.opts.Language))
	if err != nil {
		return nil, err
	}
	items, err := ParseQuiz(reply)
	if err != nil {
		t.logger.Warn("quiz reply unusable", "session", s.ID, "error", err)
		return nil, err
	}
	s.update(func(st *State) error {
		st.Quiz = items
		return nil
	})
	return items, nil
}

// Flashcards generates n cards; the previous deck survives a failure.
func (t *Tutor) Flashcards(ctx context.Context, s *Session, n int) ([]Flashcard, error) {
	defer s.begin()()
	corpus, err := corpusOf(s)
	if err != nil {
		return nil, err
	}
	n = clamp(n, t.opts.FlashcardCount, MaxFlashcardCount)
	reply, err := t.caller.Call(ctx, flashcardPrompt(corpus, n, t.opts.Language))
	if err != nil {
		return nil, err
	}
	cards, err := ParseFlashcards(reply)
	if err != nil {
		t.logger.Warn("flashcard reply unusable", "session", s.ID, "error", err)
		return nil, err
	}
	s.update(func(st *State) error {
		st.Flashcards = cards
		return nil
	})
	return cards, nil
}

// MindMap renders the corpus as a DOT digraph; the previous one survives a failure.
func (t *Tutor) MindMap(ctx context.Context, s *Session) (DiagramSource, error) {
	defer s.begin()()
	corpus, err := corpusOf(s)
	if err != nil {
		return "", err
	}
	reply, err := t.caller.Call(ctx, mindMapPrompt(corpus, t.opts.Language))
	if err != nil {
		return "", err
	}
	src, err := ParseDiagram(reply)
	if err != nil {
		t.logger.Warn("mind-map reply unusable", "session", s.ID, "error", err)
		return "", err
	}
	s.update(func(st *State) error {
		st.MindMap = src
		return nil
	})
	return src, nil
}

// GradeQuiz checks answers against the session's current quiz.
func (t *Tutor) GradeQuiz(s *Session, choices map[int]string) Grade {
	return GradeQuiz(s.Snapshot().Quiz, choices)
}

func corpusOf(s *Session) (string, error) {
	st := s.Snapshot()
	if len(st.Manifest) == 0 {
		return "", ErrNoCorpus
	}
	return st.Corpus.String(), nil
}

func clamp(n, def, limit int) int {
	if n <= 0 {
		n = def
	}
	if n > limit {
		n = limit
	}
	return n
}
