package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thywilljoshua/studyaid/internal/ai"
	"github.com/thywilljoshua/studyaid/internal/ingest"
	"github.com/thywilljoshua/studyaid/internal/session"
	"github.com/thywilljoshua/studyaid/internal/study"
)

type fakeModel struct {
	err  error
	quiz string
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	switch {
	case strings.HasPrefix(prompt, "You are a study assistant"):
		return "Chlorophyll absorbs light.", nil
	case strings.Contains(prompt, "multiple-choice"):
		if f.quiz != "" {
			return f.quiz, nil
		}
		return "```json\n[{\"question\":\"What absorbs light?\",\"options\":[\"A. Chlorophyll\",\"B. Water\"],\"correct\":\"A\",\"explain\":\"Pigment.\"}]\n```", nil
	case strings.Contains(prompt, "flashcards"):
		return `[{"q":"Pigment?","a":"Chlorophyll"},{"q":"Gas?"}]`, nil
	case strings.Contains(prompt, "mind map"):
		return "```dot\ndigraph G { Photosynthesis -> Light }\n```", nil
	}
	return "", errors.New("unexpected prompt")
}

func newTestServer(t *testing.T, m ai.Model) *httptest.Server {
	return newTestServerConfig(t, m, Config{})
}

func newTestServerConfig(t *testing.T, m ai.Model, cfg Config) *httptest.Server {
	t.Helper()
	tutor := study.NewTutor(ingest.New(ingest.Config{}), ai.NewGuard(m, "test-model", nil), study.Options{})
	srv := httptest.NewServer(New(session.NewMemoryStore(), tutor, cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func docx(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	w.Close()
	return buf.Bytes()
}

func upload(t *testing.T, url string, files map[string][]byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()
	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
}

func createSession(t *testing.T, base string) string {
	t.Helper()
	resp := postJSON(t, base+"/api/sessions", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	var out struct{ ID string }
	decodeBody(t, resp, &out)
	if out.ID == "" {
		t.Fatal("empty session id")
	}
	return base + "/api/sessions/" + out.ID
}

func TestStudyFlow(t *testing.T) {
	srv := newTestServer(t, &fakeModel{})
	sess := createSession(t, srv.URL)

	resp := upload(t, sess+"/documents", map[string][]byte{"notes.docx": docx(t, "Photosynthesis uses light")})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload: status %d", resp.StatusCode)
	}
	var rep ingestReport
	decodeBody(t, resp, &rep)
	if len(rep.Manifest) != 1 || rep.Manifest[0] != "notes.docx" || rep.CorpusBytes == 0 {
		t.Fatalf("report = %+v", rep)
	}

	var ask struct{ Answer string }
	decodeBody(t, postJSON(t, sess+"/ask", `{"question":"What absorbs light?"}`), &ask)
	if ask.Answer != "Chlorophyll absorbs light." {
		t.Errorf("answer = %q", ask.Answer)
	}

	var quiz struct{ Quiz []study.QuizItem }
	decodeBody(t, postJSON(t, sess+"/quiz", `{"count":1}`), &quiz)
	if len(quiz.Quiz) != 1 || quiz.Quiz[0].Correct != "A" {
		t.Fatalf("quiz = %+v", quiz)
	}

	var grade study.Grade
	decodeBody(t, postJSON(t, sess+"/quiz/answers", `{"answers":{"0":"A. Chlorophyll"}}`), &grade)
	if grade.Score != 1 || grade.Total != 1 {
		t.Errorf("grade = %+v", grade)
	}

	var cards struct{ Flashcards []study.Flashcard }
	decodeBody(t, postJSON(t, sess+"/flashcards", ""), &cards)
	if len(cards.Flashcards) != 2 || cards.Flashcards[1].Answer != study.MissingAnswer {
		t.Errorf("flashcards = %+v", cards.Flashcards)
	}

	var mm struct{ Dot string }
	decodeBody(t, postJSON(t, sess+"/mindmap", ""), &mm)
	if !strings.HasPrefix(mm.Dot, "digraph") {
		t.Errorf("dot = %q", mm.Dot)
	}

	resp, err := http.Get(sess)
	if err != nil {
		t.Fatal(err)
	}
	var st stateView
	decodeBody(t, resp, &st)
	if len(st.Chat) != 2 || len(st.Quiz) != 1 || len(st.Flashcards) != 2 || st.MindMap == "" {
		t.Errorf("state = %+v", st)
	}

	req, _ := http.NewRequest(http.MethodDelete, sess, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: status %d", resp.StatusCode)
	}
	resp, _ = http.Get(sess)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status %d", resp.StatusCode)
	}
}

func TestUploadRejectsUnsupported(t *testing.T) {
	srv := newTestServer(t, &fakeModel{})
	sess := createSession(t, srv.URL)
	resp := upload(t, sess+"/documents", map[string][]byte{"notes.txt": []byte("plain")})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status %d, want 415", resp.StatusCode)
	}
}

func TestUploadNothingReadable(t *testing.T) {
	srv := newTestServer(t, &fakeModel{})
	sess := createSession(t, srv.URL)
	resp := upload(t, sess+"/documents", map[string][]byte{"broken.pdf": []byte("%PDF-1.4\nbroken")})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", resp.StatusCode)
	}
	var out struct {
		Report ingestReport
	}
	decodeBody(t, resp, &out)
	if len(out.Report.Files) != 1 || out.Report.Files[0].Status != ingest.StatusFailed {
		t.Errorf("report = %+v", out.Report)
	}
}

func TestModelFailures(t *testing.T) {
	tests := []struct {
		name   string
		model  *fakeModel
		path   string
		status int
		kind   string
	}{
		{"quota", &fakeModel{err: errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")}, "/quiz", http.StatusTooManyRequests, "quota"},
		{"generic", &fakeModel{err: errors.New("connection reset")}, "/mindmap", http.StatusBadGateway, "generic"},
		{"malformed", &fakeModel{quiz: "I cannot do that."}, "/quiz", http.StatusBadGateway, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.model)
			sess := createSession(t, srv.URL)
			resp := upload(t, sess+"/documents", map[string][]byte{"notes.docx": docx(t, "Cells")})
			resp.Body.Close()

			resp = postJSON(t, sess+tt.path, "")
			if resp.StatusCode != tt.status {
				t.Fatalf("status %d, want %d", resp.StatusCode, tt.status)
			}
			var body map[string]string
			decodeBody(t, resp, &body)
			if body["kind"] != tt.kind {
				t.Errorf("kind = %q, want %q", body["kind"], tt.kind)
			}
		})
	}
}

func TestAskWithoutDocuments(t *testing.T) {
	srv := newTestServer(t, &fakeModel{})
	sess := createSession(t, srv.URL)
	resp := postJSON(t, sess+"/ask", `{"question":"anything?"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status %d, want 409", resp.StatusCode)
	}

	resp = postJSON(t, sess+"/quiz/answers", `{"answers":{"0":"A"}}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("answers without quiz: status %d, want 409", resp.StatusCode)
	}
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t, &fakeModel{})
	resp := postJSON(t, srv.URL+"/api/sessions/nope/ask", `{"question":"x"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404", resp.StatusCode)
	}
}

func TestUploadTooLarge(t *testing.T) {
	srv := newTestServerConfig(t, &fakeModel{}, Config{MaxUploadBytes: 1024})
	sess := createSession(t, srv.URL)
	resp := upload(t, sess+"/documents", map[string][]byte{"big.docx": bytes.Repeat([]byte("x"), 64<<10)})
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status %d, want 413", resp.StatusCode)
	}
}

func TestListSessions(t *testing.T) {
	srv := newTestServer(t, &fakeModel{})
	first := createSession(t, srv.URL)
	createSession(t, srv.URL)

	resp, err := http.Get(srv.URL + "/api/sessions")
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Sessions []string `json:"sessions"`
	}
	decodeBody(t, resp, &out)
	if len(out.Sessions) != 2 {
		t.Fatalf("sessions = %v", out.Sessions)
	}
	found := false
	for _, id := range out.Sessions {
		if strings.HasSuffix(first, "/"+id) {
			found = true
		}
	}
	if !found {
		t.Errorf("%s not listed in %v", first, out.Sessions)
	}
}
