package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrQuotaExhausted matches, via errors.Is, any CallError of KindQuota.
var ErrQuotaExhausted = errors.New("model quota exhausted")

// Kind is the only thing callers learn about a failed model call.
type Kind string

const (
	KindQuota   Kind = "quota"
	KindGeneric Kind = "generic"
)

var quotaMarkers = []string{"429", "resource_exhausted", "quota exceeded", "exceeded your current quota"}

// Classify maps a failure to its kind by looking at its text.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return KindQuota
		}
	}
	return KindGeneric
}

// CallError is returned for every failed guarded call.
type CallError struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *CallError) Error() string { return fmt.Sprintf("model call failed (%s): %v", e.Kind, e.Err) }

func (e *CallError) Unwrap() error { return e.Err }

func (e *CallError) Is(target error) bool { return target == ErrQuotaExhausted && e.Kind == KindQuota }

// Message is the user-facing notice for the failure.
func (e *CallError) Message() string {
	switch {
	case e.Kind == KindQuota:
		return "The model's request quota is exhausted (429). Switch to another model, e.g. gemini-2.5-flash-lite, or wait and try again."
	case errors.Is(e.Err, ErrNoModel):
		return "No API key configured. Set GOOGLE_API_KEY or api_key in the config file."
	default:
		return "The model call failed, check your API key and network and try again."
	}
}

// Guard wraps a Model so that one call yields either a reply or a classified CallError.
// It never retries.
type Guard struct {
	Model     Model
	ModelName string
	Logger    *slog.Logger
}

func NewGuard(m Model, name string, logger *slog.Logger) *Guard {
	if m == nil {
		m = Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{Model: m, ModelName: name, Logger: logger}
}

func (g *Guard) Call(ctx context.Context, prompt string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply, err = "", g.fail(fmt.Errorf("panic: %v", r))
		}
	}()
	reply, err = g.Model.Generate(ctx, prompt)
	if err != nil {
		return "", g.fail(err)
	}
	return reply, nil
}

func (g *Guard) fail(err error) *CallError {
	ce := &CallError{Kind: Classify(err), Model: g.ModelName, Err: err}
	g.Logger.Warn("model call failed", "model", g.ModelName, "kind", ce.Kind, "error", err)
	return ce
}
