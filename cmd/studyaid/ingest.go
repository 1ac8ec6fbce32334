package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func ingestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <files...>",
		Short: "Read documents into a session (new, or --session to replace its documents)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), args)
			if err != nil {
				return err
			}
			if a.cfg.DBPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "💾 Session %s saved to %s\n", sess.ID, a.cfg.DBPath)
			}
			return nil
		},
	}
}
