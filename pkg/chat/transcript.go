// Package chat models chat transcripts and resolves them to sessions
// scoped to a project's chat directory.
package chat

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Format is the on-disk format of a transcript.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatOrg      Format = "org"
)

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	if f == FormatOrg {
		return ".org"
	}
	return ".md"
}

// FormatForExt maps a file extension (with dot) to its transcript format.
// Unknown extensions default to markdown.
func FormatForExt(ext string) Format {
	if ext == ".org" {
		return FormatOrg
	}
	return FormatMarkdown
}

// NamingState is the lifecycle state of a transcript's name.
type NamingState string

const (
	// StateUnnamed means the transcript has no backing path yet.
	StateUnnamed NamingState = "unnamed"
	// StateNaming means a naming request is in flight for this transcript.
	StateNaming NamingState = "naming"
	// StateNamed means the transcript has a backing file. Terminal: a
	// named transcript is never renamed.
	StateNamed NamingState = "named"
)

// Transcript is the record of one chat session's turns. It starts Unnamed
// with no backing path; the naming pipeline transitions it to Named exactly
// once, after which its path never changes.
type Transcript struct {
	mu      sync.Mutex
	id      string
	format  Format
	state   NamingState
	path    string
	content string
}

// NewTranscript creates an unnamed transcript with the given initial content.
func NewTranscript(format Format, initialContent string) *Transcript {
	return &Transcript{
		id:      uuid.New().String(),
		format:  format,
		state:   StateUnnamed,
		content: initialContent,
	}
}

// openNamed builds a transcript already bound to an existing backing file.
func openNamed(format Format, path, content string) *Transcript {
	return &Transcript{
		id:      uuid.New().String(),
		format:  format,
		state:   StateNamed,
		path:    path,
		content: content,
	}
}

// ID returns the transcript's session-scoped identifier. It is stable
// across the naming transition.
func (t *Transcript) ID() string {
	return t.id
}

// Format returns the transcript's on-disk format.
func (t *Transcript) Format() Format {
	return t.format
}

// State returns the current naming state.
func (t *Transcript) State() NamingState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Path returns the backing file path, or "" while the transcript is not
// yet named.
func (t *Transcript) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// Content returns the full transcript content.
func (t *Transcript) Content() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.content
}

// Append adds one turn's content to the transcript.
func (t *Transcript) Append(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.content += content
}

// BeginNaming transitions Unnamed to Naming, claiming the naming slot for
// one in-flight request. It returns false if the transcript is already
// Naming or Named, which callers must treat as "do not issue a request".
func (t *Transcript) BeginNaming() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateUnnamed {
		return false
	}
	t.state = StateNaming
	return true
}

// CompleteNaming transitions Naming to Named, binding the transcript to its
// backing path. The transition fires at most once per transcript.
func (t *Transcript) CompleteNaming(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateNaming {
		return fmt.Errorf("chat: complete naming in state %s", t.state)
	}
	t.state = StateNamed
	t.path = path
	return nil
}

// AbortNaming reverts Naming to Unnamed after a failed request, so the next
// completed turn retries naming from scratch. A no-op in any other state.
func (t *Transcript) AbortNaming() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateNaming {
		t.state = StateUnnamed
	}
}

// Save writes the transcript content to its backing file. The transcript
// must be Named; an unnamed transcript has nowhere to persist to.
func (t *Transcript) Save() error {
	t.mu.Lock()
	path, content := t.path, t.content
	state := t.state
	t.mu.Unlock()

	if state != StateNamed {
		return fmt.Errorf("chat: save transcript in state %s", state)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("chat: save transcript %s: %w", path, err)
	}
	return nil
}
