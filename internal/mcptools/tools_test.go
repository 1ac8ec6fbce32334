package mcptools

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thywilljoshua/studyaid/internal/ai"
	"github.com/thywilljoshua/studyaid/internal/ingest"
	"github.com/thywilljoshua/studyaid/internal/session"
	"github.com/thywilljoshua/studyaid/internal/study"
)

var testImpl = &mcp.Implementation{Name: "studyaid-test", Version: "0.1.0"}

func mcpSession(t *testing.T, m ai.Model) (*mcp.ClientSession, *study.Session) {
	t.Helper()
	store := session.NewMemoryStore()
	sess, _ := store.Create(context.Background())
	tutor := study.NewTutor(ingest.New(ingest.Config{}), ai.NewGuard(m, "test-model", nil), study.Options{})

	srv := mcp.NewServer(testImpl, nil)
	New(tutor, store, sess).Register(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs, sess
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args any) (string, error) {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	if result.IsError {
		return "", errors.New(tc.Text)
	}
	return tc.Text, nil
}

func writeDocx(t *testing.T, dir, name, text string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	w.Close()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIngestAndManifest(t *testing.T) {
	cs, sess := mcpSession(t, ai.Noop{})
	dir := t.TempDir()
	path := writeDocx(t, dir, "cells.docx", "Mitochondria")

	text, err := callTool(t, cs, "study_ingest", map[string]any{"paths": []string{path}})
	if err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Manifest []string `json:"manifest"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Manifest) != 1 || resp.Manifest[0] != "cells.docx" {
		t.Errorf("manifest = %v", resp.Manifest)
	}
	if !sess.HasCorpus() {
		t.Error("session has no corpus after ingest")
	}

	text, err = callTool(t, cs, "study_manifest", map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "cells.docx") {
		t.Errorf("manifest tool = %s", text)
	}
}

func TestIngestRejectsUnsupported(t *testing.T) {
	cs, _ := mcpSession(t, ai.Noop{})
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("plain"), 0o644)

	_, err := callTool(t, cs, "study_ingest", map[string]any{"paths": []string{path}})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported error, got %v", err)
	}
}

func TestFlashcardsTool(t *testing.T) {
	m := ai.ModelFunc(func(_ context.Context, prompt string) (string, error) {
		return "```json\n[{\"q\":\"Powerhouse?\",\"a\":\"Mitochondria\"}]\n```", nil
	})
	cs, sess := mcpSession(t, m)
	path := writeDocx(t, t.TempDir(), "cells.docx", "Mitochondria")
	if _, err := callTool(t, cs, "study_ingest", map[string]any{"paths": []string{path}}); err != nil {
		t.Fatal(err)
	}

	text, err := callTool(t, cs, "study_flashcards", map[string]any{"count": 1})
	if err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Flashcards []study.Flashcard `json:"flashcards"`
	}
	json.Unmarshal([]byte(text), &resp)
	if len(resp.Flashcards) != 1 || resp.Flashcards[0].Answer != "Mitochondria" {
		t.Errorf("flashcards = %+v", resp.Flashcards)
	}
	if len(sess.Snapshot().Flashcards) != 1 {
		t.Error("flashcards not stored on the session")
	}
}

func TestQuotaIsToolError(t *testing.T) {
	m := ai.ModelFunc(func(context.Context, string) (string, error) {
		return "", errors.New("rpc error: code = ResourceExhausted desc = 429 Too Many Requests")
	})
	cs, _ := mcpSession(t, m)
	path := writeDocx(t, t.TempDir(), "cells.docx", "Mitochondria")
	callTool(t, cs, "study_ingest", map[string]any{"paths": []string{path}})

	_, err := callTool(t, cs, "study_quiz", map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "quota") {
		t.Errorf("expected quota notice, got %v", err)
	}
}

func TestAskNeedsDocuments(t *testing.T) {
	cs, _ := mcpSession(t, ai.Noop{})
	_, err := callTool(t, cs, "study_ask", map[string]any{"question": "why?"})
	if err == nil || !strings.Contains(err.Error(), "no documents") {
		t.Errorf("expected no documents error, got %v", err)
	}
}
