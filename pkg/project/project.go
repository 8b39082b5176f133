// Package project models a project and the file-backed memory documents
// attached to it. A Project is the aggregate root that owns the chat
// directory, the summary and description documents, and the directive
// composer built over them.
package project

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/entrhq/recall/pkg/config"
)

// Project is the per-project ownership root. All documents and pipeline
// state for one project hang off the same Project instance; Open returns
// the same instance for the same root so that per-project serialization
// can be enforced on it.
type Project struct {
	root  string
	opts  *config.Options
	store *DocumentStore
}

var (
	registry   = make(map[string]*Project)
	registryMu sync.Mutex
)

// Open returns the Project rooted at the given directory, creating it on
// first use. The root is resolved to an absolute path so that two relative
// spellings of the same directory share one Project. When the root is
// already open, the registered Project is returned as-is and opts only
// undergoes validation: the options a project was first opened with stay in
// effect for its lifetime. Nothing is written to disk; the chat directory
// is created lazily on first write.
func Open(root string, opts *config.Options) (*Project, error) {
	if opts == nil {
		opts = config.Default()
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("project: invalid options: %w", err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("project: resolve root %s: %w", root, err)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if p, ok := registry[abs]; ok {
		return p, nil
	}

	p := &Project{
		root: abs,
		opts: opts,
	}
	p.store = NewDocumentStore(p.ChatDir(), opts.SummaryFilename, opts.DescriptionFilename)
	registry[abs] = p
	return p, nil
}

// Root returns the absolute project root directory.
func (p *Project) Root() string {
	return p.root
}

// ChatDir returns the absolute path of the project's chat directory.
func (p *Project) ChatDir() string {
	return filepath.Join(p.root, p.opts.ChatDirName)
}

// Store returns the project's document store.
func (p *Project) Store() *DocumentStore {
	return p.store
}

// Options returns the configuration this project was opened with.
func (p *Project) Options() *config.Options {
	return p.opts
}
