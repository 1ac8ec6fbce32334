package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/studyaid/internal/ingest"
	"github.com/thywilljoshua/studyaid/internal/mcptools"
	"github.com/thywilljoshua/studyaid/internal/study"
)

func mcpCmd(a *app) *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the study tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var sess *study.Session
			var err error
			// stdout carries the protocol, so nothing is printed here.
			if a.sessionID != "" {
				sess, err = a.store.Get(ctx, a.sessionID)
			} else {
				sess, err = a.store.Create(ctx)
			}
			if err != nil {
				return err
			}
			if len(files) > 0 {
				items, err := ingest.LoadFiles(files)
				if err != nil {
					return err
				}
				if _, err := a.tutor.Ingest(ctx, sess, items, nil); err != nil {
					return err
				}
			}

			srv := mcp.NewServer(&mcp.Implementation{Name: "studyaid", Version: version}, nil)
			mcptools.New(a.tutor, a.store, sess).Register(srv)
			a.logger.Info("mcp server starting", "session", sess.ID)
			return srv.Run(ctx, &mcp.StdioTransport{})
		},
	}
	fileFlag(cmd, &files)
	return cmd
}
