package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/studyaid/internal/ai"
)

const version = "0.1.0"

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:               "studyaid",
		Short:             "Turn course documents into answers, quizzes, flashcards and mind maps",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.model, "model", "", "Gemini model id (default gemini-2.5-flash)")
	pf.StringVar(&a.dbPath, "db", "", "SQLite file that keeps sessions between runs")
	pf.StringVar(&a.sessionID, "session", "", "reuse a stored session (requires --db)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error")

	root.AddCommand(
		ingestCmd(a),
		askCmd(a),
		quizCmd(a),
		flashcardsCmd(a),
		mindmapCmd(a),
		exportCmd(a),
		serveCmd(a),
		mcpCmd(a),
		watchCmd(a),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	cancel()
	a.close()
	if err != nil {
		var ce *ai.CallError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, "❌ "+ce.Message())
			if ce.Kind == ai.KindQuota {
				fmt.Fprintln(os.Stderr, "   Try again with --model gemini-2.5-flash-lite")
			}
		} else {
			fmt.Fprintln(os.Stderr, "❌", err)
		}
		os.Exit(1)
	}
}
