package pipeline

import (
	"context"
	"fmt"

	"github.com/entrhq/recall/pkg/chat"
	"github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/llm/tokenizer"
	"github.com/entrhq/recall/pkg/project"
	"github.com/entrhq/recall/pkg/types"
)

// SummaryUpdater folds a conversation into the project's running summary
// via one remote request. The summary file is only ever replaced wholesale
// after a successful merge; a failed request leaves it byte-identical.
type SummaryUpdater struct {
	project  *project.Project
	provider llm.Provider
	tok      *tokenizer.Tokenizer
	opts     *config.Options

	// active, when set, is consulted after the remote request resolves,
	// so a merge that lands after a Deactivate never overwrites the
	// summary. Nil means always active.
	active func() bool
}

// NewSummaryUpdater creates an updater for the given project. Requests run
// on the configured summary model when the provider supports per-call
// model overrides.
func NewSummaryUpdater(p *project.Project, provider llm.Provider, tok *tokenizer.Tokenizer) *SummaryUpdater {
	return &SummaryUpdater{
		project:  p,
		provider: provider,
		tok:      tok,
		opts:     p.Options(),
	}
}

// Update sends the current summary and the transcript content to the
// summary model and overwrites the summary document with the merged result.
// The model is instructed to merge rather than replace and to avoid
// inventing unstated facts; a missing summary is presented as "None" so the
// first run produces the initial summary.
func (u *SummaryUpdater) Update(ctx context.Context, t *chat.Transcript) error {
	store := u.project.Store()

	content := t.Content()
	if u.tok != nil {
		content = u.tok.TruncateTail(content, u.opts.MaxPromptTokens)
	}

	prompt := fmt.Sprintf("Current summary:\n%s\n\nNew conversation:\n%s", store.ReadSummary(), content)

	provider := providerForModel(u.provider, u.opts.SummaryModel)
	msg, err := provider.Complete(ctx, []*types.Message{
		types.NewSystemMessage(u.opts.SummaryPrompt),
		types.NewUserMessage(prompt),
	})
	if err != nil {
		return fmt.Errorf("pipeline: summary request: %w", err)
	}

	if u.active != nil && !u.active() {
		return ErrInactive
	}

	if err := store.WriteSummary(msg.Content); err != nil {
		return err
	}
	return nil
}
