// Package study holds the per-session study state and the operations that
// turn a corpus into answers, quizzes, flashcards and mind-maps.
package study

import (
	"errors"
	"sync"
	"time"

	"github.com/thywilljoshua/studyaid/internal/ingest"
)

var (
	// ErrNoContent means an ingestion found nothing readable; prior state is kept.
	ErrNoContent = errors.New("no readable content found")
	// ErrNoCorpus means an operation needs documents the session does not have yet.
	ErrNoCorpus = errors.New("no documents ingested yet")
	// ErrMalformedReply means the model reply held no usable fragment.
	ErrMalformedReply = errors.New("malformed model reply")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// State is what a session remembers. JSON field names are the well-known keys
// consumers look state up by.
type State struct {
	Corpus     ingest.Corpus `json:"corpus"`
	Manifest   []string      `json:"manifest"`
	Quiz       []QuizItem    `json:"quiz,omitempty"`
	Flashcards []Flashcard   `json:"flashcards,omitempty"`
	MindMap    DiagramSource `json:"mindmap,omitempty"`
	Chat       []Message     `json:"chat,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Session is created empty, receives its corpus on the first successful
// ingestion, has it replaced wholesale on every later one, and is dropped
// when the user is done.
type Session struct {
	ID string

	// busy serialises actions; mu guards state.
	busy  sync.Mutex
	mu    sync.Mutex
	state State
}

func NewSession(id string) *Session {
	return &Session{ID: id, state: State{UpdatedAt: time.Now().UTC()}}
}

// Restore rebuilds a session from stored state.
func Restore(id string, st State) *Session {
	return &Session{ID: id, state: st}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// HasCorpus reports whether anything has been ingested.
func (s *Session) HasCorpus() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Manifest) > 0
}

// Commit installs a new corpus and manifest. Everything derived from the old
// corpus goes with it. An empty result leaves the session untouched.
func (s *Session) Commit(res ingest.Result) error {
	if res.Empty() {
		return ErrNoContent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{
		Corpus:    res.Corpus,
		Manifest:  append([]string(nil), res.Manifest...),
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Session) begin() func() {
	s.busy.Lock()
	return s.busy.Unlock
}

// update runs fn with the session locked.
func (s *Session) update(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.state); err != nil {
		return err
	}
	s.state.UpdatedAt = time.Now().UTC()
	return nil
}

func (st State) clone() State {
	out := st
	out.Corpus.Sections = append([]ingest.Section(nil), st.Corpus.Sections...)
	out.Manifest = append([]string(nil), st.Manifest...)
	out.Quiz = append([]QuizItem(nil), st.Quiz...)
	out.Flashcards = append([]Flashcard(nil), st.Flashcards...)
	out.Chat = append([]Message(nil), st.Chat...)
	return out
}
