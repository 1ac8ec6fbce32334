package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/d/notes.pdf", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/d/notes.docx", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/d/deck.pptx", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/d/sheet.xlsx", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "/d/notes.pdf", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/d/notes.txt", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/d/.~lock.notes.docx", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.ev); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

func TestRunCoalescesChanges(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0o644)

	w, err := New(dir, 100*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, paths []string) { calls <- paths })
	}()

	first := <-calls
	if len(first) != 1 || filepath.Base(first[0]) != "a.pdf" {
		t.Fatalf("initial call = %v", first)
	}

	for _, name := range []string{"b.docx", "c.pptx", "ignored.txt"} {
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case paths := <-calls:
			if len(paths) == 3 {
				cancel()
				<-done
				return
			}
		case <-deadline:
			t.Fatal("no call with all three documents")
		}
	}
}
