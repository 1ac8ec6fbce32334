// Package ingest turns uploaded documents into a labelled plain-text corpus.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupported is returned at the upload boundary for types the pipeline never reads.
var ErrUnsupported = errors.New("unsupported file type")

// Pipeline reads documents and aggregates them. It holds no per-run state.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg, logger: cfg.Logger}
}

// Progress is told how many top-level items are done out of total.
type Progress func(done, total int)

// Read extracts the text of a single document. It never fails; the returned
// Extraction says whether the text is usable.
func (p *Pipeline) Read(name string, data []byte) Extraction {
	return p.read(name, data)
}

func (p *Pipeline) read(name string, data []byte) Extraction {
	ex := Extraction{Source: name, Label: name, Format: Route(name)}
	if int64(len(data)) > p.cfg.MaxFileSize {
		ex.Status = StatusFailed
		ex.Err = fmt.Errorf("%d bytes exceeds limit of %d", len(data), p.cfg.MaxFileSize)
		return ex
	}

	var text string
	var err error
	switch ex.Format {
	case FormatPDF:
		text, err = readPDF(data)
	case FormatDocx:
		text, err = guard(readDocx, data)
	case FormatPptx:
		text, err = guard(readPptx, data)
	case FormatXlsx:
		text, err = guard(readXlsx, data)
	case FormatXls:
		text, err = readXls(data)
	default:
		// Nested archives are not expanded.
		ex.Status = StatusUnsupported
		return ex
	}

	switch {
	case err != nil:
		p.logger.Debug("extraction failed", "source", name, "format", ex.Format, "error", err)
		ex.Status = StatusFailed
		ex.Err = err
	case strings.TrimSpace(text) == "":
		ex.Status = StatusEmpty
	default:
		ex.Status = StatusOK
		ex.Text = text
	}
	return ex
}

// guard turns a reader panic into an error.
func guard(fn func([]byte) (string, error), data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(data)
}

// Ingest reads every item in order and builds the corpus and manifest.
// Unreadable documents are dropped; an unreadable archive becomes a warning.
func (p *Pipeline) Ingest(ctx context.Context, items []Item, progress Progress) (Result, error) {
	var res Result
	total := len(items)
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if Route(it.Name) == FormatZip {
			exs, warnings, err := p.expandArchive(ctx, it.Name, it.Data)
			if err != nil {
				if ctx.Err() != nil {
					return res, err
				}
				p.logger.Warn("archive skipped", "archive", it.Name, "error", err)
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: not a readable zip archive, skipped", it.Name))
			}
			res.Warnings = append(res.Warnings, warnings...)
			for _, ex := range exs {
				res.collect(ex)
			}
		} else {
			res.collect(p.Read(it.Name, it.Data))
		}
		if progress != nil {
			progress(i+1, total)
		}
	}
	p.logger.Info("ingestion finished", "items", total, "sections", len(res.Corpus.Sections), "warnings", len(res.Warnings))
	return res, nil
}

func (r *Result) collect(ex Extraction) {
	r.Files = append(r.Files, ex)
	if ex.Status != StatusOK {
		return
	}
	label := cleanLabel(ex.Label)
	r.Corpus.add(label, ex.Source, ex.Text)
	r.Manifest = append(r.Manifest, label)
}

// LoadFiles reads paths from disk, rejecting unsupported types before any parsing.
func LoadFiles(paths []string) ([]Item, error) {
	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		if !Accepts(p) {
			return nil, fmt.Errorf("%s: %w (want one of %s)", p, ErrUnsupported, strings.Join(SupportedFormats(), ", "))
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Name: filepath.Base(p), Data: b})
	}
	return items, nil
}

// ScanDir lists supported files directly inside dir, sorted by name.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !Accepts(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
