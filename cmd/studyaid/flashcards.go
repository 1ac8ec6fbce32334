package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func flashcardsCmd(a *app) *cobra.Command {
	var files []string
	var count int
	cmd := &cobra.Command{
		Use:   "flashcards",
		Short: "Generate question/answer flashcards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), files)
			if err != nil {
				return err
			}
			fmt.Println("🤖 Generating flashcards...")
			cards, err := a.tutor.Flashcards(cmd.Context(), sess, count)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), sess); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, c := range cards {
				fmt.Fprintf(out, "\n%d. %s\n   → %s\n", i+1, c.Question, c.Answer)
			}
			return nil
		},
	}
	fileFlag(cmd, &files)
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of cards, 1-50 (default from config)")
	return cmd
}
