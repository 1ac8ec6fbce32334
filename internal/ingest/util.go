package ingest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// neutralize keeps section text from impersonating a section header.
func neutralize(text string) string {
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		if strings.HasPrefix(strings.TrimSpace(ln), headerPrefix) {
			lines[i] = strings.Replace(ln, headerPrefix, escapedPrefix, 1)
		}
	}
	return strings.Join(lines, "\n")
}

// cleanLabel keeps a label on the single header line it is rendered into.
func cleanLabel(label string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, label)
}

// renderTable dumps rows as an aligned text table: header, separator, data rows.
func renderTable(rows [][]string) string {
	rows = dropEmptyRows(rows)
	if len(rows) == 0 {
		return ""
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	widths := make([]int, cols)
	norm := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, cols)
		for j := range cells {
			if j < len(r) {
				cells[j] = flatten(r[j])
			}
			if w := utf8.RuneCountInString(cells[j]); w > widths[j] {
				widths[j] = w
			}
		}
		norm[i] = cells
	}

	var out []string
	out = append(out, tableLine(norm[0], widths))
	var sep []string
	for _, w := range widths {
		if w < 3 {
			w = 3
		}
		sep = append(sep, strings.Repeat("-", w))
	}
	out = append(out, "| "+strings.Join(sep, " | ")+" |")
	for _, row := range norm[1:] {
		out = append(out, tableLine(row, widths))
	}
	return strings.Join(out, "\n")
}

func tableLine(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		w := widths[i]
		if w < 3 {
			w = 3
		}
		padded[i] = c + strings.Repeat(" ", w-utf8.RuneCountInString(c))
	}
	return "| " + strings.Join(padded, " | ") + " |"
}

func dropEmptyRows(rows [][]string) [][]string {
	var out [][]string
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

var twoPlusSpaces = regexp.MustCompile(`\s{2,}`)

// flatten keeps a cell on one line so the table stays readable.
func flatten(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "/")
	return twoPlusSpaces.ReplaceAllString(s, " ")
}

// joinNonEmpty joins trimmed, non-empty parts with a newline.
func joinNonEmpty(parts []string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
