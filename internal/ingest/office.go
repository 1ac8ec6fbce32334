package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	drawingNS      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	relationshipNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// readDocx returns the document's paragraphs, one per line.
func readDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	f := zipFile(zr, "word/document.xml")
	if f == nil {
		return "", errors.New("word/document.xml not found in archive")
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var paras []string
	var cur strings.Builder
	depth := 0
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				// Text boxes nest paragraphs inside a run of the outer one.
				if depth > 0 && cur.Len() > 0 {
					paras = append(paras, cur.String())
					cur.Reset()
				}
				depth++
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					cur.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if depth > 0 {
					depth--
					paras = append(paras, cur.String())
					cur.Reset()
				}
			}
		}
	}
	return strings.TrimSpace(strings.Join(paras, "\n")), nil
}

// readPptx returns the text of every text-bearing shape, slide by slide.
func readPptx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	order := slideOrder(zr)
	if len(order) == 0 {
		return "", errors.New("no slides found in archive")
	}
	var shapes []string
	for _, name := range order {
		f := zipFile(zr, name)
		if f == nil {
			continue
		}
		texts, err := slideShapes(f)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		shapes = append(shapes, texts...)
	}
	return joinNonEmpty(shapes), nil
}

func slideShapes(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var shapes, paras []string
	var para strings.Builder
	spDepth := 0
	inPara, inText := false, false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "sp":
				spDepth++
			case t.Name.Local == "p" && t.Name.Space == drawingNS:
				inPara = true
				para.Reset()
			case t.Name.Local == "t" && inPara:
				inText = true
			case t.Name.Local == "br" && inPara:
				para.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "t":
				inText = false
			case t.Name.Local == "p" && t.Name.Space == drawingNS:
				inPara = false
				if spDepth == 0 {
					// Table cells and other frames: one entry per paragraph.
					shapes = append(shapes, para.String())
					continue
				}
				paras = append(paras, para.String())
			case t.Name.Local == "sp" && spDepth > 0:
				spDepth--
				if spDepth == 0 {
					shapes = append(shapes, joinNonEmpty(paras))
					paras = nil
				}
			}
		}
	}
	return shapes, nil
}

var slideNameRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// slideOrder follows the presentation's slide list, falling back to file numbering.
func slideOrder(zr *zip.Reader) []string {
	if order := presentationOrder(zr); len(order) > 0 {
		return order
	}
	type numbered struct {
		name string
		n    int
	}
	var slides []numbered
	for _, f := range zr.File {
		if m := slideNameRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, numbered{f.Name, n})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })
	out := make([]string, len(slides))
	for i, s := range slides {
		out[i] = s.name
	}
	return out
}

func presentationOrder(zr *zip.Reader) []string {
	pres := zipFile(zr, "ppt/presentation.xml")
	rels := zipFile(zr, "ppt/_rels/presentation.xml.rels")
	if pres == nil || rels == nil {
		return nil
	}

	targets := map[string]string{}
	err := walkXML(rels, func(t xml.StartElement) {
		if t.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range t.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join("ppt", target)
		}
		targets[id] = target
	})
	if err != nil {
		return nil
	}

	var order []string
	err = walkXML(pres, func(t xml.StartElement) {
		if t.Name.Local != "sldId" {
			return
		}
		for _, a := range t.Attr {
			if a.Name.Local == "id" && a.Name.Space == relationshipNS {
				if target, ok := targets[a.Value]; ok {
					order = append(order, target)
				}
			}
		}
	})
	if err != nil {
		return nil
	}
	return order
}

func walkXML(f *zip.File, visit func(xml.StartElement)) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if t, ok := tok.(xml.StartElement); ok {
			visit(t)
		}
	}
}

func zipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}
