package study

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thywilljoshua/studyaid/internal/ai"
)

// Placeholders shown when the model leaves a field out.
const (
	MissingQuestion = "?"
	MissingAnswer   = "!"
)

type Flashcard struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// ParseFlashcards decodes the card list out of a model reply. Cards missing a
// field keep a placeholder instead of failing the whole list.
func ParseFlashcards(reply string) ([]Flashcard, error) {
	var raw []map[string]any
	if err := json.Unmarshal([]byte(ai.ExtractJSONArray(reply)), &raw); err != nil {
		return nil, fmt.Errorf("%w: flashcards: %v", ErrMalformedReply, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: flashcards: empty list", ErrMalformedReply)
	}
	cards := make([]Flashcard, 0, len(raw))
	for _, m := range raw {
		cards = append(cards, Flashcard{
			Question: field(m, "q", MissingQuestion),
			Answer:   field(m, "a", MissingAnswer),
		})
	}
	return cards, nil
}

func field(m map[string]any, key, missing string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return missing
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if strings.TrimSpace(s) == "" {
		return missing
	}
	return s
}

// DiagramSource is DOT text that at least starts with "digraph".
type DiagramSource string

// ParseDiagram pulls the digraph out of a model reply.
func ParseDiagram(reply string) (DiagramSource, error) {
	src := ai.ExtractGraph(reply)
	if !ai.HasGraph(src) {
		return "", fmt.Errorf("%w: mind-map: no %s found", ErrMalformedReply, ai.GraphKeyword)
	}
	return DiagramSource(src), nil
}
