package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func askCmd(a *app) *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), files)
			if err != nil {
				return err
			}
			fmt.Println("🤖 Asking Gemini...")
			answer, err := a.tutor.Ask(cmd.Context(), sess, strings.Join(args, " "))
			if serr := a.save(cmd.Context(), sess); serr != nil && err == nil {
				err = serr
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	fileFlag(cmd, &files)
	return cmd
}
