package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/recall/pkg/project"
)

// transcriptPattern matches the files in a chat directory that count as
// transcripts. The summary and description documents do not match and so
// can never be opened as sessions.
var transcriptPattern = glob.MustCompile("*.{md,org}")

// Session is the handle the chat runtime holds for one conversation. It
// pairs the requested session name with the transcript backing it.
type Session struct {
	Name       string
	Transcript *Transcript
}

// SessionManager resolves session names to transcripts scoped to one
// project's chat directory.
type SessionManager struct {
	project *project.Project
}

// NewSessionManager creates a manager over the given project.
func NewSessionManager(p *project.Project) *SessionManager {
	return &SessionManager{project: p}
}

// Sessions lists the names of existing sessions, i.e. the transcript files
// under the project's chat directory. Files elsewhere are never candidates:
// restricting the selectable set to this directory is what prevents one
// project's context from bleeding into another's.
func (m *SessionManager) Sessions() ([]string, error) {
	entries, err := os.ReadDir(m.project.ChatDir())
	if err != nil {
		if os.IsNotExist(err) {
			// No chat directory yet means no sessions, not an error.
			return nil, nil
		}
		return nil, fmt.Errorf("chat: list sessions: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !transcriptPattern.Match(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return names, nil
}

// OpenOrCreate resolves name to an existing session under the chat
// directory, or creates a new unnamed one if no such session exists. New
// sessions carry the given initial content and format; nothing is written
// to disk and no naming happens here. Naming is owned by the turn pipeline.
func (m *SessionManager) OpenOrCreate(name, initialContent string, format Format) (*Session, error) {
	if path, ok, err := m.lookup(name); err != nil {
		return nil, err
	} else if ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("chat: open session %s: %w", name, err)
		}
		return &Session{
			Name:       name,
			Transcript: openNamed(FormatForExt(filepath.Ext(path)), path, string(b)),
		}, nil
	}

	return &Session{
		Name:       name,
		Transcript: NewTranscript(format, initialContent),
	}, nil
}

// lookup finds the backing file for a session name under the chat
// directory, trying each transcript extension. Names that would escape the
// chat directory are rejected.
func (m *SessionManager) lookup(name string) (string, bool, error) {
	if name == "" {
		return "", false, nil
	}

	dir := m.project.ChatDir()
	for _, ext := range []string{FormatMarkdown.Ext(), FormatOrg.Ext()} {
		path := filepath.Join(dir, name+ext)
		if !strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return "", false, fmt.Errorf("chat: session name %q escapes chat directory", name)
		}
		if _, err := os.Stat(path); err == nil {
			return path, true, nil
		}
	}
	return "", false, nil
}
