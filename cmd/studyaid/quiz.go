package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/studyaid/internal/study"
)

func quizCmd(a *app) *cobra.Command {
	var files []string
	var count int
	var interactive bool
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate a multiple-choice quiz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), files)
			if err != nil {
				return err
			}
			fmt.Println("🤖 Generating quiz...")
			items, err := a.tutor.Quiz(cmd.Context(), sess, count)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), sess); err != nil {
				return err
			}
			fmt.Printf("✅ %d question(s)\n", len(items))
			if !interactive {
				b, _ := json.MarshalIndent(items, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			g := takeQuiz(os.Stdin, cmd.OutOrStdout(), items)
			fmt.Fprintf(cmd.OutOrStdout(), "\n🏁 Score: %d/%d\n", g.Score, g.Total)
			return nil
		},
	}
	fileFlag(cmd, &files)
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of questions, 1-50 (default from config)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "answer the questions in the terminal")
	return cmd
}

// takeQuiz asks every question on out, reads one answer per line from in and
// grades them. A blank line skips the question.
func takeQuiz(in io.Reader, out io.Writer, items []study.QuizItem) study.Grade {
	sc := bufio.NewScanner(in)
	choices := map[int]string{}
	for i, q := range items {
		fmt.Fprintf(out, "\nQ%d. %s\n", i+1, q.Question)
		for _, o := range q.Options {
			fmt.Fprintf(out, "   %s\n", o)
		}
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			break
		}
		choice := strings.TrimSpace(sc.Text())
		if choice == "" {
			continue
		}
		choices[i] = choice
		if q.IsCorrect(choice) {
			fmt.Fprintln(out, "✅ Correct")
		} else {
			fmt.Fprintf(out, "❌ Wrong, the answer is %s\n", q.Correct)
		}
		if q.Explain != "" {
			fmt.Fprintf(out, "   %s\n", q.Explain)
		}
	}
	return study.GradeQuiz(items, choices)
}
