package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// metadata entries written by archivers and desktop shells.
var (
	metadataPrefixes = []string{"__MACOSX/", "__MACOSX\\"}
	metadataNames    = map[string]bool{".ds_store": true, "thumbs.db": true, "desktop.ini": true}
)

func isMetadataEntry(name string) bool {
	for _, p := range metadataPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	return strings.HasPrefix(base, "._") || metadataNames[base]
}

// expandArchive reads every document inside a zip. It returns an error only when
// the archive itself cannot be opened.
func (p *Pipeline) expandArchive(ctx context.Context, name string, data []byte) ([]Extraction, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("open archive %s: %w", name, err)
	}

	var out []Extraction
	var warnings []string
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return out, warnings, err
		}
		if f.FileInfo().IsDir() || isMetadataEntry(f.Name) || path.Ext(f.Name) == "" {
			continue
		}
		source := name + "/" + f.Name
		if f.UncompressedSize64 > uint64(p.cfg.MaxFileSize) {
			warnings = append(warnings, fmt.Sprintf("%s: skipped, %d bytes exceeds limit", source, f.UncompressedSize64))
			continue
		}
		body, err := readEntry(f, p.cfg.MaxFileSize)
		if err != nil {
			p.logger.Warn("archive entry unreadable", "archive", name, "entry", f.Name, "error", err)
			out = append(out, Extraction{Source: source, Label: ArchiveMarker + source, Format: Route(f.Name), Status: StatusFailed, Err: err})
			continue
		}
		ex := p.read(f.Name, body)
		ex.Source = source
		ex.Label = ArchiveMarker + source
		out = append(out, ex)
	}
	return out, warnings, nil
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("entry exceeds %d bytes", limit)
	}
	return b, nil
}
