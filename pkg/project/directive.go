package project

import "fmt"

// DirectiveComposer builds the system directive sent with every outgoing
// chat request. It reads the store fresh on each call and never caches, so
// a summary written between two requests is reflected in the second one.
type DirectiveComposer struct {
	store    *DocumentStore
	template string
}

// NewDirectiveComposer creates a composer over the given store. The
// template must contain two %s slots: summary first, description second.
// Template validity is a configuration concern checked by config.Validate;
// the composer assumes a well-formed template.
func NewDirectiveComposer(store *DocumentStore, template string) *DirectiveComposer {
	return &DirectiveComposer{store: store, template: template}
}

// Compose formats the directive from the current on-disk summary and
// description. Missing documents appear as "None".
func (c *DirectiveComposer) Compose() string {
	return fmt.Sprintf(c.template, c.store.ReadSummary(), c.store.ReadDescription())
}

// Directive returns a composer using the project's configured template.
func (p *Project) Directive() *DirectiveComposer {
	return NewDirectiveComposer(p.store, p.opts.DirectiveTemplate)
}
