package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/recall/pkg/chat"
	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/project"
)

// DirectiveProvider supplies the system directive for an outgoing chat
// request. It is called once per request so the directive always reflects
// the current on-disk documents.
type DirectiveProvider func() string

// TurnListener is called by the host once per completed assistant turn.
type TurnListener func(ctx context.Context, t *chat.Transcript)

// Host is the surface recall needs from the embedding chat runtime: a slot
// for the active directive provider and a slot for the per-turn listener.
// The runtime owns both slots; recall only installs and removes values.
type Host interface {
	// DirectiveProvider returns the currently installed provider, which
	// may be nil.
	DirectiveProvider() DirectiveProvider

	// SetDirectiveProvider installs the provider for outgoing requests.
	SetDirectiveProvider(p DirectiveProvider)

	// SetTurnListener installs the per-turn listener. A nil listener
	// removes the current one.
	SetTurnListener(l TurnListener)
}

// FeatureContext ties the memory feature to one host and one project. It
// replaces process-global registration: the host owns the context and can
// activate and deactivate it without touching any shared state. Deactivate
// restores the exact directive provider that was installed when Activate
// ran, whatever it was.
type FeatureContext struct {
	host     Host
	project  *project.Project
	provider llm.Provider
	hookOpts []HookOption

	mu     sync.Mutex
	hook   *Hook
	prior  DirectiveProvider
	active bool
}

// NewFeatureContext creates an inactive feature context.
func NewFeatureContext(host Host, p *project.Project, provider llm.Provider, opts ...HookOption) *FeatureContext {
	return &FeatureContext{
		host:     host,
		project:  p,
		provider: provider,
		hookOpts: opts,
	}
}

// Activate captures the host's current directive provider, then installs
// the project directive composer and the turn hook. Calling Activate on an
// active context is an error rather than a silent re-registration.
func (f *FeatureContext) Activate() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.active {
		return fmt.Errorf("pipeline: feature already active for %s", f.project.Root())
	}

	hook, err := NewHook(f.project, f.provider, f.hookOpts...)
	if err != nil {
		return err
	}

	f.prior = f.host.DirectiveProvider()
	composer := f.project.Directive()
	f.host.SetDirectiveProvider(composer.Compose)
	f.host.SetTurnListener(hook.TurnCompleted)

	f.hook = hook
	f.active = true
	return nil
}

// Deactivate removes the turn listener, restores the directive provider
// captured at Activate time, and marks the hook inactive so queued or
// in-flight work becomes a no-op. Safe to call on an inactive context.
func (f *FeatureContext) Deactivate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.active {
		return
	}

	f.host.SetTurnListener(nil)
	f.host.SetDirectiveProvider(f.prior)
	f.hook.Deactivate()

	f.hook = nil
	f.prior = nil
	f.active = false
}

// Active reports whether the feature is currently registered with the host.
func (f *FeatureContext) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Hook returns the active hook, or nil when deactivated. Exposed so hosts
// and tests can wait for queued work.
func (f *FeatureContext) Hook() *Hook {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hook
}
