package ingest

import (
	"log/slog"
	"strings"
)

// Format identifies a supported upload type.
type Format string

const (
	FormatUnknown Format = ""
	FormatPDF     Format = "pdf"
	FormatDocx    Format = "docx"
	FormatPptx    Format = "pptx"
	FormatXlsx    Format = "xlsx"
	FormatXls     Format = "xls"
	FormatZip     Format = "zip"
)

// Item is one uploaded payload. It is consumed once by Ingest.
type Item struct {
	Name string
	Data []byte
}

// Status tells an empty document apart from one that could not be read.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusUnsupported Status = "unsupported"
	StatusFailed      Status = "failed"
)

// Extraction is the outcome of reading a single document.
type Extraction struct {
	Source string `json:"source"`
	Label  string `json:"label"`
	Format Format `json:"format"`
	Status Status `json:"status"`
	Text   string `json:"-"`
	Err    error  `json:"-"`
}

// Section is one delimited block of the corpus.
type Section struct {
	Label  string `json:"label"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Corpus is the ordered concatenation of every successfully read document.
type Corpus struct {
	Sections []Section `json:"sections"`
}

// Result is what one ingestion run produced.
type Result struct {
	Corpus   Corpus       `json:"corpus"`
	Manifest []string     `json:"manifest"`
	Files    []Extraction `json:"files"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Empty reports whether nothing readable was found.
func (r Result) Empty() bool { return len(r.Manifest) == 0 }

type Config struct {
	// MaxFileSize caps a single document or archive entry (default: 50 MB).
	MaxFileSize int64
	Logger      *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

const (
	headerPrefix  = "--- FILE: "
	headerSuffix  = " ---"
	escapedPrefix = "-- FILE: "

	// ArchiveMarker prefixes manifest labels of documents found inside a zip.
	ArchiveMarker = "📦 "
)

// Header returns the delimiter line that opens a section.
func Header(label string) string { return headerPrefix + cleanLabel(label) + headerSuffix }

// String renders the corpus the way it is handed to the model.
func (c Corpus) String() string {
	var b strings.Builder
	for _, s := range c.Sections {
		b.WriteString("\n")
		b.WriteString(Header(s.Label))
		b.WriteString("\n")
		b.WriteString(s.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// Len returns the rendered size in bytes.
func (c Corpus) Len() int { return len(c.String()) }

func (c *Corpus) add(label, source, text string) {
	c.Sections = append(c.Sections, Section{Label: cleanLabel(label), Source: source, Text: neutralize(text)})
}
