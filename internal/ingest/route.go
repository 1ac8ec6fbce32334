package ingest

import (
	"path"
	"strings"
)

// Route picks a format from the file extension alone, case-insensitively.
func Route(name string) Format {
	switch strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/"))) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDocx
	case ".pptx":
		return FormatPptx
	case ".xlsx":
		return FormatXlsx
	case ".xls":
		return FormatXls
	case ".zip":
		return FormatZip
	default:
		return FormatUnknown
	}
}

// Accepts reports whether the upload boundary lets name through.
func Accepts(name string) bool { return Route(name) != FormatUnknown }

// SupportedFormats lists the extensions accepted at the upload boundary.
func SupportedFormats() []string {
	return []string{"pdf", "docx", "pptx", "xlsx", "xls", "zip"}
}
