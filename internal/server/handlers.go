package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thywilljoshua/studyaid/internal/ai"
	"github.com/thywilljoshua/studyaid/internal/ingest"
	"github.com/thywilljoshua/studyaid/internal/session"
	"github.com/thywilljoshua/studyaid/internal/study"
)

type stateView struct {
	ID          string              `json:"id"`
	Manifest    []string            `json:"manifest"`
	CorpusBytes int                 `json:"corpus_bytes"`
	Quiz        []study.QuizItem    `json:"quiz"`
	Flashcards  []study.Flashcard   `json:"flashcards"`
	MindMap     study.DiagramSource `json:"mindmap"`
	Chat        []study.Message     `json:"chat"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type fileView struct {
	Source string        `json:"source"`
	Label  string        `json:"label"`
	Format ingest.Format `json:"format"`
	Status ingest.Status `json:"status"`
	Error  string        `json:"error,omitempty"`
}

type ingestReport struct {
	Manifest    []string   `json:"manifest"`
	Files       []fileView `json:"files"`
	Warnings    []string   `json:"warnings"`
	CorpusBytes int        `json:"corpus_bytes"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Create(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	st := sess.Snapshot()
	writeJSON(w, http.StatusOK, stateView{
		ID:          sess.ID,
		Manifest:    st.Manifest,
		CorpusBytes: st.Corpus.Len(),
		Quiz:        st.Quiz,
		Flashcards:  st.Flashcards,
		MindMap:     st.MindMap,
		Chat:        st.Chat,
		UpdatedAt:   st.UpdatedAt,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, errors.New(`missing "files" field`))
		return
	}

	// Unsupported types are refused before anything is parsed.
	var rejected []string
	for _, h := range headers {
		if !ingest.Accepts(h.Filename) {
			rejected = append(rejected, h.Filename)
		}
	}
	if len(rejected) > 0 {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Errorf("%w: %s (want one of %s)",
			ingest.ErrUnsupported, strings.Join(rejected, ", "), strings.Join(ingest.SupportedFormats(), ", ")))
		return
	}

	items := make([]ingest.Item, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("open %s: %w", h.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("read %s: %w", h.Filename, err))
			return
		}
		items = append(items, ingest.Item{Name: h.Filename, Data: data})
	}

	res, err := s.tutor.Ingest(r.Context(), sess, items, nil)
	report := reportOf(res)
	if errors.Is(err, study.ErrNoContent) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error(), "report": report})
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	if !s.save(w, r, sess) {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, errors.New("question is required"))
		return
	}
	answer, err := s.tutor.Ask(r.Context(), sess, req.Question)
	// the question is recorded even when the call fails
	if !s.save(w, r, sess) {
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

type countRequest struct {
	Count int `json:"count"`
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req countRequest
	if !decode(w, r, &req) {
		return
	}
	items, err := s.tutor.Quiz(r.Context(), sess, req.Count)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !s.save(w, r, sess) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quiz": items})
}

func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Answers map[string]string `json:"answers"`
	}
	if !decode(w, r, &req) {
		return
	}
	if len(sess.Snapshot().Quiz) == 0 {
		writeError(w, http.StatusConflict, errors.New("no quiz generated yet"))
		return
	}
	choices := make(map[int]string, len(req.Answers))
	for k, v := range req.Answers {
		i, err := strconv.Atoi(k)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("answer key %q is not a question index", k))
			return
		}
		choices[i] = v
	}
	writeJSON(w, http.StatusOK, s.tutor.GradeQuiz(sess, choices))
}

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req countRequest
	if !decode(w, r, &req) {
		return
	}
	cards, err := s.tutor.Flashcards(r.Context(), sess, req.Count)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !s.save(w, r, sess) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flashcards": cards})
}

func (s *Server) handleMindMap(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	src, err := s.tutor.MindMap(r.Context(), sess)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !s.save(w, r, sess) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"dot": string(src)})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*study.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, sess *study.Session) bool {
	if err := s.store.Save(r.Context(), sess); err != nil {
		s.logger.Error("save session", "session", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("could not save session"))
		return false
	}
	return true
}

// fail maps domain errors to a status and a JSON body.
func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusOf(err)
	body := map[string]string{"error": err.Error()}
	var ce *ai.CallError
	if errors.As(err, &ce) {
		body["error"] = ce.Message()
		body["kind"] = string(ce.Kind)
	}
	if code >= 500 {
		s.logger.Warn("request failed", "status", code, "error", err)
	}
	writeJSON(w, code, body)
}

func statusOf(err error) int {
	var ce *ai.CallError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, study.ErrNoContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, study.ErrNoCorpus):
		return http.StatusConflict
	case errors.Is(err, ai.ErrQuotaExhausted):
		return http.StatusTooManyRequests
	case errors.As(err, &ce), errors.Is(err, study.ErrMalformedReply):
		return http.StatusBadGateway
	case errors.Is(err, ingest.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func reportOf(res ingest.Result) ingestReport {
	rep := ingestReport{
		Manifest:    res.Manifest,
		Warnings:    res.Warnings,
		CorpusBytes: res.Corpus.Len(),
		Files:       make([]fileView, 0, len(res.Files)),
	}
	for _, f := range res.Files {
		v := fileView{Source: f.Source, Label: f.Label, Format: f.Format, Status: f.Status}
		if f.Err != nil {
			v.Error = f.Err.Error()
		}
		rep.Files = append(rep.Files, v)
	}
	return rep
}

// decode reads an optional JSON body; an empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
