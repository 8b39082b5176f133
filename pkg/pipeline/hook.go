// Package pipeline implements the per-turn memory pipeline: naming a new
// transcript, persisting it, and folding the conversation into the
// project's running summary. All remote work runs asynchronously on a
// per-project queue so the chat runtime is never blocked and concurrent
// sessions in one project cannot race on shared documents.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/entrhq/recall/pkg/chat"
	"github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/llm/tokenizer"
	"github.com/entrhq/recall/pkg/logging"
	"github.com/entrhq/recall/pkg/project"
)

// Reporter delivers user-visible failure messages. Remote and storage
// failures in the async pipeline are reported here instead of being thrown
// back at the caller, which has long since returned.
type Reporter func(format string, args ...interface{})

// StderrReporter writes failure messages to standard error.
func StderrReporter(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Hook is the per-turn entry point of the pipeline. The host calls
// TurnCompleted once after every completed assistant turn; everything else
// happens asynchronously on the project's queue.
type Hook struct {
	project    *project.Project
	opts       *config.Options
	namer      *Namer
	summarizer *SummaryUpdater
	queue      *taskQueue
	report     Reporter
	log        *logging.Logger
	active     atomic.Bool
}

// HookOption configures a Hook.
type HookOption func(*Hook)

// WithReporter sets the reporter for user-visible failure messages.
// Defaults to StderrReporter.
func WithReporter(r Reporter) HookOption {
	return func(h *Hook) {
		h.report = r
	}
}

// NewHook creates the turn hook for a project. The provider is the remote
// collaborator used for naming and summary requests; model selection per
// request comes from the project's options.
func NewHook(p *project.Project, provider llm.Provider, opts ...HookOption) (*Hook, error) {
	log, err := logging.NewLogger("pipeline")
	if err != nil {
		log.Warnf("file logging unavailable, using stderr fallback: %v", err)
	}

	// Truncation is best-effort: without a tokenizer, full transcript
	// content is sent and the remote side enforces its own limits.
	tok, err := tokenizer.New()
	if err != nil {
		log.Warnf("tokenizer unavailable, sending untruncated content: %v", err)
		tok = nil
	}

	h := &Hook{
		project:    p,
		opts:       p.Options(),
		namer:      NewNamer(p, provider, tok),
		summarizer: NewSummaryUpdater(p, provider, tok),
		queue:      queueFor(p.Root()),
		report:     StderrReporter,
		log:        log,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.active.Store(true)
	h.namer.active = h.Active
	h.summarizer.active = h.Active
	return h, nil
}

// TurnCompleted schedules the pipeline for one completed assistant turn.
// It returns immediately; naming, persisting, and summarizing run on the
// project's queue, strictly in that order, with the summary request only
// issued after the naming request has fully resolved.
func (h *Hook) TurnCompleted(ctx context.Context, t *chat.Transcript) {
	h.queue.enqueue(func() {
		// The feature may have been deactivated while this task sat in
		// the queue. A stale task must not mutate anything.
		if !h.active.Load() {
			h.log.Debugf("dropping turn for %s: hook deactivated", h.project.Root())
			return
		}
		h.run(ctx, t)
	})
}

// run executes one turn's pipeline synchronously on the queue goroutine.
func (h *Hook) run(ctx context.Context, t *chat.Transcript) {
	if t.State() == chat.StateNamed {
		// Already named: only autosave. The summary is deliberately not
		// refreshed on this path.
		if h.opts.Autosave {
			if err := t.Save(); err != nil {
				h.log.Errorf("autosave failed: %v", err)
				h.report("recall: autosave failed: %v", err)
			}
		}
		return
	}

	if err := h.namer.NameAndPersist(ctx, t); err != nil {
		if errors.Is(err, ErrNotUnnamed) {
			// Another turn won the naming race; nothing to do here.
			h.log.Debugf("skipping naming for transcript %s: %v", t.ID(), err)
			return
		}
		if errors.Is(err, ErrInactive) {
			// Deactivated while the request was in flight. Not a
			// failure, so nothing is reported to the user.
			h.log.Debugf("dropping resolved naming for transcript %s: hook deactivated", t.ID())
			return
		}
		h.log.Errorf("naming failed: %v", err)
		h.report("recall: could not name conversation: %v", err)
		return
	}
	h.log.Infof("named transcript %s -> %s", t.ID(), t.Path())

	// Deactivation between the naming resolving and this point stops the
	// remaining turn work; the named transcript keeps its file.
	if !h.active.Load() {
		h.log.Debugf("skipping autosave and summary for %s: hook deactivated", t.ID())
		return
	}

	if h.opts.Autosave {
		if err := t.Save(); err != nil {
			h.log.Errorf("autosave failed: %v", err)
			h.report("recall: autosave failed: %v", err)
		}
	}

	if h.opts.AutoSummary {
		if err := h.summarizer.Update(ctx, t); err != nil {
			if errors.Is(err, ErrInactive) {
				h.log.Debugf("dropping resolved summary for %s: hook deactivated", h.project.Root())
				return
			}
			h.log.Errorf("summary update failed: %v", err)
			h.report("recall: could not update project summary: %v", err)
			return
		}
		h.log.Infof("summary updated for %s", h.project.Root())
	}
}

// Deactivate marks the hook inactive. Tasks already queued become no-ops;
// in-flight remote callbacks find the hook inactive and do not mutate
// state. Reactivation is not supported; create a new Hook instead.
func (h *Hook) Deactivate() {
	h.active.Store(false)
}

// Active reports whether the hook still processes turns.
func (h *Hook) Active() bool {
	return h.active.Load()
}

// Wait blocks until every turn scheduled so far has been fully processed.
// Intended for tests and one-shot CLI use; a long-running host never needs
// to call it.
func (h *Hook) Wait() {
	h.queue.wait()
}
