package ingest

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	rpdf "rsc.io/pdf"
)

// readPDF returns the text of every page that has any, one line break between pages.
// rsc.io/pdf does the layout-aware work; pdfcpu content streams are the fallback for
// files it refuses.
func readPDF(data []byte) (string, error) {
	text, err := readPDFLayout(data)
	if err == nil && text != "" {
		return text, nil
	}
	alt, altErr := readPDFStreams(data)
	if altErr == nil && alt != "" {
		return alt, nil
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func readPDFLayout(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("rsc.io/pdf: %v", r)
		}
	}()
	doc, err := rpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var pages []string
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}
		if t := pageText(p); t != "" {
			pages = append(pages, t)
		}
	}
	return strings.Join(pages, "\n"), nil
}

// pageText rebuilds lines from positioned glyphs.
func pageText(p rpdf.Page) string {
	var b strings.Builder
	var lastY, lastEnd float64
	for i, t := range p.Content().Text {
		if i > 0 {
			lineGap := math.Max(t.FontSize*0.5, 1)
			switch {
			case math.Abs(t.Y-lastY) > lineGap:
				b.WriteByte('\n')
			case t.X-lastEnd > t.FontSize*0.2 && t.FontSize > 0:
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		lastY = t.Y
		lastEnd = t.X + t.W
	}
	return strings.TrimSpace(b.String())
}

func readPDFStreams(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdfcpu: %v", r)
		}
	}()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}
	var pages []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		raw, err := io.ReadAll(r)
		if err != nil || len(raw) == 0 {
			continue
		}
		if t := textFromStream(raw); t != "" {
			pages = append(pages, t)
		}
	}
	return strings.Join(pages, "\n"), nil
}

var pdfStringRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// textFromStream pulls string operands of the text-showing operators out of a content stream.
func textFromStream(data []byte) string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			lines = append(lines, s)
		}
		cur.Reset()
	}
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				cur.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			flush()
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				cur.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")), bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			flush()
		}
	}
	flush()
	return strings.Join(lines, "\n")
}

func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c < '0' || c > '7' {
				sb.WriteByte(c)
				continue
			}
			val := int(c - '0')
			for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}
