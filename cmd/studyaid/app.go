package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/studyaid/internal/ai"
	"github.com/thywilljoshua/studyaid/internal/config"
	"github.com/thywilljoshua/studyaid/internal/ingest"
	"github.com/thywilljoshua/studyaid/internal/session"
	"github.com/thywilljoshua/studyaid/internal/study"
)

// app carries the persistent flags and everything built from them.
type app struct {
	configPath string
	model      string
	dbPath     string
	sessionID  string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
	store  session.Store
	tutor  *study.Tutor
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.model != "" {
		cfg.Model = a.model
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(os.Stderr)
	slog.SetDefault(a.logger)

	model, err := ai.FromKey(cmd.Context(), cfg.APIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("init gemini: %w", err)
	}
	if cfg.APIKey == "" {
		a.logger.Warn("no API key configured, model calls will fail")
	}
	pipe := ingest.New(ingest.Config{MaxFileSize: cfg.MaxFileBytes(), Logger: a.logger})
	a.tutor = study.NewTutor(pipe, ai.NewGuard(model, cfg.Model, a.logger), study.Options{
		Language:       cfg.Language,
		QuizCount:      cfg.QuizCount,
		FlashcardCount: cfg.FlashcardCount,
		Logger:         a.logger,
	})

	if cfg.DBPath == "" {
		a.store = session.NewMemoryStore()
		return nil
	}
	st, err := session.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	a.store = st
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

// openSession returns the --session one when given, otherwise a new session.
// Any paths are ingested into it.
func (a *app) openSession(ctx context.Context, paths []string) (*study.Session, error) {
	var sess *study.Session
	var err error
	switch {
	case a.sessionID != "":
		if a.cfg.DBPath == "" {
			return nil, errors.New("--session needs --db (or db_path in the config)")
		}
		sess, err = a.store.Get(ctx, a.sessionID)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", a.sessionID, err)
		}
	case len(paths) == 0:
		return nil, errors.New("no documents given: pass files or --session")
	default:
		sess, err = a.store.Create(ctx)
		if err != nil {
			return nil, err
		}
	}
	if len(paths) > 0 {
		if err := a.ingest(ctx, sess, paths); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (a *app) ingest(ctx context.Context, sess *study.Session, paths []string) error {
	items, err := ingest.LoadFiles(paths)
	if err != nil {
		return err
	}
	fmt.Printf("📥 Reading %d file(s)...\n", len(items))
	res, err := a.tutor.Ingest(ctx, sess, items, func(done, total int) {
		fmt.Printf("   [%d/%d] %s\n", done, total, items[done-1].Name)
	})
	for _, w := range res.Warnings {
		fmt.Printf("⚠️  %s\n", w)
	}
	for _, f := range res.Files {
		if f.Status == ingest.StatusOK {
			continue
		}
		fmt.Printf("⚠️  %s: %s\n", f.Source, f.Status)
	}
	if err != nil {
		return err
	}
	fmt.Printf("✅ Loaded %d document(s), %d characters\n", len(res.Manifest), res.Corpus.Len())
	for _, label := range res.Manifest {
		fmt.Printf("   • %s\n", label)
	}
	return a.save(ctx, sess)
}

func (a *app) save(ctx context.Context, sess *study.Session) error {
	if err := a.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func fileFlag(cmd *cobra.Command, files *[]string) {
	cmd.Flags().StringSliceVarP(files, "file", "f", nil, "documents to study (pdf, docx, pptx, xlsx, xls, zip)")
}
