package study

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thywilljoshua/studyaid/internal/ai"
)

type QuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  string   `json:"correct"`
	Explain  string   `json:"explain"`
}

// IsCorrect compares only the leading character of the choice with the
// leading character of the stored answer, so "B. Paris" matches "B".
// Two options sharing a first character are indistinguishable.
func (q QuizItem) IsCorrect(choice string) bool {
	c := firstRune(choice)
	return c != utf8.RuneError && c == firstRune(q.Correct)
}

func firstRune(s string) rune {
	s = strings.TrimSpace(s)
	if s == "" {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// Answer is the verdict on one submitted choice.
type Answer struct {
	Index   int    `json:"index"`
	Choice  string `json:"choice"`
	Correct bool   `json:"correct"`
	Expect  string `json:"expected"`
	Explain string `json:"explain,omitempty"`
}

type Grade struct {
	Answers []Answer `json:"answers"`
	Score   int      `json:"score"`
	Total   int      `json:"total"`
}

// GradeQuiz checks the submitted choices, keyed by question index.
// Unanswered questions count toward Total but get no Answer.
func GradeQuiz(items []QuizItem, choices map[int]string) Grade {
	g := Grade{Total: len(items)}
	for i, q := range items {
		choice, ok := choices[i]
		if !ok || strings.TrimSpace(choice) == "" {
			continue
		}
		a := Answer{Index: i, Choice: choice, Correct: q.IsCorrect(choice), Expect: q.Correct, Explain: q.Explain}
		if a.Correct {
			g.Score++
		}
		g.Answers = append(g.Answers, a)
	}
	return g
}

// ParseQuiz decodes the quiz list out of a model reply.
func ParseQuiz(reply string) ([]QuizItem, error) {
	var items []QuizItem
	if err := json.Unmarshal([]byte(ai.ExtractJSONArray(reply)), &items); err != nil {
		return nil, fmt.Errorf("%w: quiz: %v", ErrMalformedReply, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: quiz: empty list", ErrMalformedReply)
	}
	return items, nil
}
