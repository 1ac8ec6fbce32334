package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/studyaid/internal/study"
	"github.com/thywilljoshua/studyaid/internal/watch"
)

func watchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Keep a session in sync with a folder of documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if debounce <= 0 {
				debounce = a.cfg.WatchDebounce
			}
			var sess *study.Session
			var err error
			if a.sessionID != "" {
				sess, err = a.store.Get(ctx, a.sessionID)
			} else {
				sess, err = a.store.Create(ctx)
			}
			if err != nil {
				return err
			}

			w, err := watch.New(args[0], debounce, a.logger)
			if err != nil {
				return err
			}
			fmt.Printf("👀 Watching %s (session %s)\n", args[0], sess.ID)
			err = w.Run(ctx, func(ctx context.Context, paths []string) {
				if len(paths) == 0 {
					fmt.Println("📭 No supported documents yet")
					return
				}
				if err := a.ingest(ctx, sess, paths); err != nil {
					fmt.Printf("⚠️  %v\n", err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before re-ingesting (default from config)")
	return cmd
}
