package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/recall/pkg/chat"
	"github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/llm/tokenizer"
	"github.com/entrhq/recall/pkg/project"
	"github.com/entrhq/recall/pkg/types"
)

// ErrNotUnnamed is returned by NameAndPersist when the transcript is not in
// the Unnamed state, either because it is already named or because another
// naming request is in flight.
var ErrNotUnnamed = errors.New("pipeline: transcript is not unnamed")

// ErrInactive is returned when a remote request resolves after the owning
// hook was deactivated. The operation stops without mutating any state; the
// caller drops it silently rather than reporting a failure.
var ErrInactive = errors.New("pipeline: hook deactivated")

// Namer derives a human-readable filename for an unnamed transcript via one
// remote request and binds the transcript to that file. It owns the
// Unnamed -> Naming -> Named transition exclusively: no other component
// moves a transcript between naming states.
type Namer struct {
	project  *project.Project
	provider llm.Provider
	tok      *tokenizer.Tokenizer
	opts     *config.Options

	// active, when set, is consulted after the remote request resolves.
	// The feature may be torn down while the request is in flight; a
	// resolved request must no-op instead of mutating state. Nil means
	// always active.
	active func() bool
}

// NewNamer creates a namer for the given project. Requests run on the
// configured naming model when the provider supports per-call model
// overrides.
func NewNamer(p *project.Project, provider llm.Provider, tok *tokenizer.Tokenizer) *Namer {
	return &Namer{
		project:  p,
		provider: provider,
		tok:      tok,
		opts:     p.Options(),
	}
}

// NameAndPersist runs the full naming sequence for t: claim the naming
// slot, ask the naming model for a filename, create the chat directory,
// write the transcript to its destination, and transition to Named.
//
// On a remote or storage failure the transcript reverts to Unnamed so the
// next completed turn retries from scratch, and the error describes which
// stage failed. A transcript that is already Named (or mid-naming) yields
// ErrNotUnnamed without issuing a request.
func (n *Namer) NameAndPersist(ctx context.Context, t *chat.Transcript) error {
	if !t.BeginNaming() {
		return ErrNotUnnamed
	}

	name, err := n.requestName(ctx, t)
	if err != nil {
		t.AbortNaming()
		return err
	}

	// The naming request may have resolved after a Deactivate. Stop here,
	// before anything touches the transcript or the filesystem.
	if n.active != nil && !n.active() {
		t.AbortNaming()
		return ErrInactive
	}

	dest, err := n.destination(name, t.Format())
	if err != nil {
		t.AbortNaming()
		return err
	}

	store := n.project.Store()
	if err := store.EnsureDirectory(); err != nil {
		t.AbortNaming()
		return err
	}

	// Persist first, transition second: a transcript only becomes Named
	// once its backing file actually exists.
	if err := os.WriteFile(dest, []byte(t.Content()), 0o600); err != nil {
		t.AbortNaming()
		return fmt.Errorf("pipeline: persist transcript %s: %w", dest, err)
	}

	if err := t.CompleteNaming(dest); err != nil {
		return err
	}
	return nil
}

// requestName asks the naming model for a filename, sending the transcript
// content truncated to the configured token budget.
func (n *Namer) requestName(ctx context.Context, t *chat.Transcript) (string, error) {
	content := t.Content()
	if n.tok != nil {
		content = n.tok.TruncateTail(content, n.opts.MaxPromptTokens)
	}

	provider := providerForModel(n.provider, n.opts.NamingModel)
	msg, err := provider.Complete(ctx, []*types.Message{
		types.NewSystemMessage(n.opts.NamingPrompt),
		types.NewUserMessage(content),
	})
	if err != nil {
		return "", fmt.Errorf("pipeline: naming request: %w", err)
	}

	name := sanitizeName(msg.Content)
	if name == "" {
		return "", fmt.Errorf("pipeline: naming model returned no usable filename (%q)", msg.Content)
	}
	return name, nil
}

// destination computes the transcript's target path under the chat
// directory. When a file with the derived name already exists, a numeric
// suffix is appended rather than silently overwriting another transcript.
func (n *Namer) destination(name string, format chat.Format) (string, error) {
	dir := n.project.ChatDir()
	ext := format.Ext()

	path := filepath.Join(dir, name+ext)
	if !strings.HasPrefix(path, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("pipeline: derived name %q escapes chat directory", name)
	}

	for i := 2; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		path = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, i, ext))
	}
}

// sanitizeName normalizes a model response into a safe single-segment
// filename: quotes, extensions, path separators, and surrounding whitespace
// are stripped, inner whitespace collapses to single spaces.
func sanitizeName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.Trim(name, "\"'`")

	// Models sometimes add an extension despite instructions.
	for _, ext := range []string{".md", ".org", ".txt"} {
		name = strings.TrimSuffix(name, ext)
	}

	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\n', '\r', '\t':
			return ' '
		}
		return r
	}, name)

	name = strings.Join(strings.Fields(name), " ")
	return strings.Trim(name, ". ")
}

// providerForModel returns provider directed at model, using a lightweight
// clone when supported. An empty model or a provider without clone support
// falls back to the provider as configured.
func providerForModel(provider llm.Provider, model string) llm.Provider {
	if model == "" {
		return provider
	}
	if cloner, ok := provider.(llm.ModelCloner); ok {
		return cloner.CloneWithModel(model)
	}
	return provider
}
