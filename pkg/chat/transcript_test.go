package chat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFormatExt(t *testing.T) {
	if got := FormatMarkdown.Ext(); got != ".md" {
		t.Errorf("Expected .md, got %s", got)
	}
	if got := FormatOrg.Ext(); got != ".org" {
		t.Errorf("Expected .org, got %s", got)
	}
	if got := FormatForExt(".org"); got != FormatOrg {
		t.Errorf("Expected org format, got %s", got)
	}
	if got := FormatForExt(".md"); got != FormatMarkdown {
		t.Errorf("Expected markdown format, got %s", got)
	}
}

func TestNewTranscriptStartsUnnamed(t *testing.T) {
	tr := NewTranscript(FormatMarkdown, "hello")
	if tr.State() != StateUnnamed {
		t.Fatalf("Expected state %s, got %s", StateUnnamed, tr.State())
	}
	if tr.Path() != "" {
		t.Errorf("Unnamed transcript must have no path, got %q", tr.Path())
	}
	if tr.Content() != "hello" {
		t.Errorf("Expected initial content to be kept, got %q", tr.Content())
	}
	if tr.ID() == "" {
		t.Error("Expected a non-empty transcript ID")
	}
}

func TestNamingTransitionFiresAtMostOnce(t *testing.T) {
	tr := NewTranscript(FormatMarkdown, "")

	if !tr.BeginNaming() {
		t.Fatal("First BeginNaming should succeed")
	}
	if tr.BeginNaming() {
		t.Error("BeginNaming while Naming must fail")
	}

	if err := tr.CompleteNaming("/tmp/x.md"); err != nil {
		t.Fatalf("CompleteNaming failed: %v", err)
	}
	if tr.State() != StateNamed {
		t.Fatalf("Expected state %s, got %s", StateNamed, tr.State())
	}

	if tr.BeginNaming() {
		t.Error("BeginNaming on a Named transcript must fail")
	}
	if err := tr.CompleteNaming("/tmp/other.md"); err == nil {
		t.Error("Second CompleteNaming must fail")
	}
	if tr.Path() != "/tmp/x.md" {
		t.Errorf("Named path must never change, got %q", tr.Path())
	}
}

func TestAbortNamingRevertsToUnnamed(t *testing.T) {
	tr := NewTranscript(FormatOrg, "")

	tr.BeginNaming()
	tr.AbortNaming()
	if tr.State() != StateUnnamed {
		t.Fatalf("Expected state %s after abort, got %s", StateUnnamed, tr.State())
	}

	// Retry path: naming can be claimed again after an abort.
	if !tr.BeginNaming() {
		t.Error("BeginNaming after abort should succeed")
	}
}

func TestAbortNamingIsNoOpWhenNamed(t *testing.T) {
	tr := NewTranscript(FormatMarkdown, "")
	tr.BeginNaming()
	if err := tr.CompleteNaming("/tmp/x.md"); err != nil {
		t.Fatalf("CompleteNaming failed: %v", err)
	}

	tr.AbortNaming()
	if tr.State() != StateNamed {
		t.Errorf("AbortNaming must not undo the Named state, got %s", tr.State())
	}
}

func TestSaveUnnamedFails(t *testing.T) {
	tr := NewTranscript(FormatMarkdown, "content")
	if err := tr.Save(); err == nil {
		t.Error("Save on an unnamed transcript must fail")
	}
}

func TestSaveWritesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.md")
	tr := NewTranscript(FormatMarkdown, "turn one\n")
	tr.BeginNaming()
	if err := tr.CompleteNaming(path); err != nil {
		t.Fatalf("CompleteNaming failed: %v", err)
	}

	tr.Append("turn two\n")
	if err := tr.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading saved transcript failed: %v", err)
	}
	if string(b) != "turn one\nturn two\n" {
		t.Errorf("Unexpected saved content: %q", string(b))
	}
}
