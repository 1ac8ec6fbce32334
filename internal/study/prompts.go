package study

import (
	"fmt"
	"strings"
)

func languageLine(lang string) string {
	if lang == "" {
		return ""
	}
	return "Write every human-readable string in " + lang + ".\n"
}

func askPrompt(corpus, question, lang string) string {
	var b strings.Builder
	b.WriteString("You are a study assistant. Answer the question using only the documents below. ")
	b.WriteString("If the documents do not contain the answer, say so.\n")
	b.WriteString(languageLine(lang))
	b.WriteString("\nDocuments:\n")
	b.WriteString(corpus)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

func quizPrompt(corpus string, n int, lang string) string {
	return fmt.Sprintf(`Create %d multiple-choice questions from the content below.
%sReturn ONLY a JSON list, no explanations and no code fences:
[{"question": "...", "options": ["A. ...", "B. ...", "C. ...", "D. ..."], "correct": "A", "explain": "..."}]
Every option starts with its letter; "correct" is the letter of the right option.

Content:
%s`, n, languageLine(lang), corpus)
}

func flashcardPrompt(corpus string, n int, lang string) string {
	return fmt.Sprintf(`Create %d flashcards covering the key facts of the content below.
%sReturn ONLY a JSON list, no explanations and no code fences:
[{"q": "...", "a": "..."}]

Content:
%s`, n, languageLine(lang), corpus)
}

func mindMapPrompt(corpus, lang string) string {
	return fmt.Sprintf(`Summarize the main concepts of the content below as a mind map in Graphviz DOT.
%sReturn ONLY the DOT source, starting with "digraph". Use rankdir=LR, one central node,
short node labels, and at most three levels.

Content:
%s`, languageLine(lang), corpus)
}
