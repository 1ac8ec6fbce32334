// Package mcptools exposes one study session as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thywilljoshua/studyaid/internal/ai"
	"github.com/thywilljoshua/studyaid/internal/ingest"
	"github.com/thywilljoshua/studyaid/internal/session"
	"github.com/thywilljoshua/studyaid/internal/study"
)

// Tools binds the tutor to a single session. Every tool call works on it and
// saves it afterwards.
type Tools struct {
	tutor *study.Tutor
	store session.Store
	sess  *study.Session
}

func New(tutor *study.Tutor, store session.Store, sess *study.Session) *Tools {
	return &Tools{tutor: tutor, store: store, sess: sess}
}

// Register adds every study tool to srv.
func (t *Tools) Register(srv *mcp.Server) {
	addTool(srv, &mcp.Tool{
		Name:        "study_ingest",
		Description: "Read documents (pdf, docx, pptx, xlsx, xls, zip) from disk and make them the session's study material, replacing any earlier documents.",
		InputSchema: inputSchema(map[string]any{
			"paths": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Document paths"},
		}, []string{"paths"}),
	}, t.ingest)

	addTool(srv, &mcp.Tool{
		Name:        "study_ask",
		Description: "Answer a question using only the ingested documents.",
		InputSchema: inputSchema(map[string]any{
			"question": map[string]any{"type": "string"},
		}, []string{"question"}),
	}, t.ask)

	addTool(srv, &mcp.Tool{
		Name:        "study_quiz",
		Description: "Generate a multiple-choice quiz from the ingested documents.",
		InputSchema: inputSchema(map[string]any{
			"count": map[string]any{"type": "integer", "minimum": 1, "maximum": study.MaxQuizCount},
		}, nil),
	}, t.quiz)

	addTool(srv, &mcp.Tool{
		Name:        "study_flashcards",
		Description: "Generate question/answer flashcards from the ingested documents.",
		InputSchema: inputSchema(map[string]any{
			"count": map[string]any{"type": "integer", "minimum": 1, "maximum": study.MaxFlashcardCount},
		}, nil),
	}, t.flashcards)

	addTool(srv, &mcp.Tool{
		Name:        "study_mindmap",
		Description: "Summarize the ingested documents as a Graphviz DOT mind map.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, t.mindMap)

	addTool(srv, &mcp.Tool{
		Name:        "study_manifest",
		Description: "List the documents currently loaded in the session.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, t.manifest)
}

type args struct {
	Paths    []string `json:"paths"`
	Question string   `json:"question"`
	Count    int      `json:"count"`
}

func (t *Tools) ingest(ctx context.Context, a args) (any, error) {
	if len(a.Paths) == 0 {
		return nil, errors.New("paths is required")
	}
	items, err := ingest.LoadFiles(a.Paths)
	if err != nil {
		return nil, err
	}
	res, err := t.tutor.Ingest(ctx, t.sess, items, nil)
	if err != nil {
		return nil, err
	}
	return map[string]any{"manifest": res.Manifest, "warnings": res.Warnings, "corpus_bytes": res.Corpus.Len()}, t.save(ctx)
}

func (t *Tools) ask(ctx context.Context, a args) (any, error) {
	if a.Question == "" {
		return nil, errors.New("question is required")
	}
	answer, err := t.tutor.Ask(ctx, t.sess, a.Question)
	if err != nil {
		return nil, err
	}
	return map[string]string{"answer": answer}, t.save(ctx)
}

func (t *Tools) quiz(ctx context.Context, a args) (any, error) {
	items, err := t.tutor.Quiz(ctx, t.sess, a.Count)
	if err != nil {
		return nil, err
	}
	return map[string]any{"quiz": items}, t.save(ctx)
}

func (t *Tools) flashcards(ctx context.Context, a args) (any, error) {
	cards, err := t.tutor.Flashcards(ctx, t.sess, a.Count)
	if err != nil {
		return nil, err
	}
	return map[string]any{"flashcards": cards}, t.save(ctx)
}

func (t *Tools) mindMap(ctx context.Context, _ args) (any, error) {
	src, err := t.tutor.MindMap(ctx, t.sess)
	if err != nil {
		return nil, err
	}
	return map[string]string{"dot": string(src)}, t.save(ctx)
}

func (t *Tools) manifest(_ context.Context, _ args) (any, error) {
	st := t.sess.Snapshot()
	return map[string]any{"session": t.sess.ID, "manifest": st.Manifest, "corpus_bytes": st.Corpus.Len()}, nil
}

func (t *Tools) save(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	return t.store.Save(ctx, t.sess)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// addTool decodes arguments, runs fn and returns its result as JSON text.
// Failures become tool errors rather than protocol errors.
func addTool(srv *mcp.Server, tool *mcp.Tool, fn func(context.Context, args) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var a args
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &a); err != nil {
				return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}
		resp, err := fn(ctx, a)
		if err != nil {
			var ce *ai.CallError
			if errors.As(err, &ce) {
				err = errors.New(ce.Message())
			}
			return toolError(err), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}
