package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func mindmapCmd(a *app) *cobra.Command {
	var files []string
	var out string
	cmd := &cobra.Command{
		Use:   "mindmap",
		Short: "Summarize the documents as a Graphviz DOT mind map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), files)
			if err != nil {
				return err
			}
			fmt.Println("🤖 Drawing mind map...")
			src, err := a.tutor.MindMap(cmd.Context(), sess)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), sess); err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(src))
				return nil
			}
			if err := os.WriteFile(out, []byte(src), 0o644); err != nil {
				return err
			}
			fmt.Printf("✅ Wrote %s (render with: dot -Tpng %s -o mindmap.png)\n", out, out)
			return nil
		},
	}
	fileFlag(cmd, &files)
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the DOT source to this file instead of stdout")
	return cmd
}
