package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// MissingDocument is the logical value of a document whose backing file
// does not exist. It is substituted into the directive so the model sees
// an explicit "None" rather than an empty slot.
const MissingDocument = "None"

// DocumentStore reads and writes the file-backed memory documents of one
// project: the running summary and the read-only project description.
// Summary writes are atomic so a concurrent reader never observes a
// partial document.
type DocumentStore struct {
	chatDir         string
	summaryName     string
	descriptionName string
}

// NewDocumentStore creates a store over the given chat directory. The
// directory itself is created lazily by EnsureDirectory.
func NewDocumentStore(chatDir, summaryName, descriptionName string) *DocumentStore {
	return &DocumentStore{
		chatDir:         chatDir,
		summaryName:     summaryName,
		descriptionName: descriptionName,
	}
}

// Dir returns the chat directory this store operates on.
func (s *DocumentStore) Dir() string {
	return s.chatDir
}

// SummaryPath returns the summary document's path.
func (s *DocumentStore) SummaryPath() string {
	return filepath.Join(s.chatDir, s.summaryName)
}

// DescriptionPath returns the description document's path.
func (s *DocumentStore) DescriptionPath() string {
	return filepath.Join(s.chatDir, s.descriptionName)
}

// ReadSummary returns the current summary text, or MissingDocument if no
// summary has been written yet.
func (s *DocumentStore) ReadSummary() string {
	return s.readDocument(s.SummaryPath())
}

// ReadDescription returns the project description text, or MissingDocument
// if none exists. The description is never written by recall.
func (s *DocumentStore) ReadDescription() string {
	return s.readDocument(s.DescriptionPath())
}

// readDocument reads a document file, mapping absence to MissingDocument.
// Unreadable files are also treated as missing rather than failing the
// directive that depends on them.
func (s *DocumentStore) readDocument(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("project: treating unreadable document as missing", "path", path, "err", err)
		}
		return MissingDocument
	}
	return string(b)
}

// WriteSummary replaces the summary document with text. The write is a full
// overwrite performed atomically via a temporary file and rename, so readers
// observe either the old summary or the new one, never a partial write.
func (s *DocumentStore) WriteSummary(text string) error {
	if err := s.EnsureDirectory(); err != nil {
		return err
	}

	path := s.SummaryPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o600); err != nil {
		return fmt.Errorf("project: write temp summary: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("project: atomic rename %s: %w", path, err)
	}
	return nil
}

// EnsureDirectory creates the chat directory, including parents, if it does
// not exist. It is a no-op when the directory is already present.
func (s *DocumentStore) EnsureDirectory() error {
	if err := os.MkdirAll(s.chatDir, 0o750); err != nil {
		return fmt.Errorf("project: create chat directory %s: %w", s.chatDir, err)
	}
	return nil
}
