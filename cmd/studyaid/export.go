package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/studyaid/internal/export"
)

func exportCmd(a *app) *cobra.Command {
	var files []string
	var out string
	var title string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the session's material as a Markdown study pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), files)
			if err != nil {
				return err
			}
			if !sess.HasCorpus() {
				fmt.Println("⚠️  Session has no documents, writing an empty pack")
			}
			written, err := export.Write(out, export.Pack{Title: title, Session: sess.ID, State: sess.Snapshot()})
			if err != nil {
				return err
			}
			for _, f := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "📝 %s\n", f)
			}
			return nil
		},
	}
	fileFlag(cmd, &files)
	cmd.Flags().StringVarP(&out, "out", "o", "study-pack", "output directory")
	cmd.Flags().StringVar(&title, "title", "", "title for index.md")
	return cmd
}
