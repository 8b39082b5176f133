// Package config defines the configuration surface for recall and loads it
// from an optional YAML file layered over defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultChatDirName is the project-relative directory holding the
	// summary, description, and transcript files.
	DefaultChatDirName = ".gptel-chats"

	// DefaultSummaryFilename is the summary document filename.
	DefaultSummaryFilename = "summary.txt"

	// DefaultDescriptionFilename is the project description filename.
	DefaultDescriptionFilename = "project-description.txt"
)

// DefaultDirectiveTemplate is the system directive sent with every chat
// request. The first slot receives the running summary, the second the
// project description. Missing documents appear as "None".
const DefaultDirectiveTemplate = "You are a helpful assistant working inside a software project.\n\n" +
	"Summary of previous conversations in this project:\n%s\n\n" +
	"Project description:\n%s"

// DefaultNamingPrompt instructs the naming model to produce a short
// human-readable filename for a conversation.
const DefaultNamingPrompt = "Name this conversation with a filename of at most five words. " +
	"Respond with only the filename: no extension, no quotes, no punctuation beyond spaces and hyphens."

// DefaultSummaryPrompt instructs the summary model to fold a conversation
// into the existing summary rather than replace it.
const DefaultSummaryPrompt = "You maintain the running summary of all conversations in a software project. " +
	"Merge the new conversation into the existing summary: keep prior facts that still hold, update the ones " +
	"that changed, and add what is new. Never invent facts that are not stated in the summary or the conversation. " +
	"Respond with only the updated summary text."

// Options is the full configuration surface recognized by recall.
type Options struct {
	// ChatDirName is the directory segment under the project root that
	// holds all chat files.
	ChatDirName string `yaml:"chat_dir"`

	// Autosave persists the transcript after every completed turn.
	Autosave bool `yaml:"autosave"`

	// AutoSummary folds the conversation into the running summary on the
	// turn that names the transcript.
	AutoSummary bool `yaml:"auto_summary"`

	// NamingModel is the model id used for filename derivation.
	NamingModel string `yaml:"naming_model"`

	// SummaryModel is the model id used for summary merges.
	SummaryModel string `yaml:"summary_model"`

	SummaryFilename     string `yaml:"summary_filename"`
	DescriptionFilename string `yaml:"description_filename"`

	// DirectiveTemplate must contain exactly two %s slots: summary, then
	// description.
	DirectiveTemplate string `yaml:"directive_template"`

	NamingPrompt  string `yaml:"naming_prompt"`
	SummaryPrompt string `yaml:"summary_prompt"`

	// MaxPromptTokens caps the transcript content included in naming and
	// summary requests. Zero disables truncation.
	MaxPromptTokens int `yaml:"max_prompt_tokens"`
}

// Default returns the options recall ships with.
func Default() *Options {
	return &Options{
		ChatDirName:         DefaultChatDirName,
		Autosave:            true,
		AutoSummary:         true,
		NamingModel:         "gpt-4o-mini",
		SummaryModel:        "gpt-4o-mini",
		SummaryFilename:     DefaultSummaryFilename,
		DescriptionFilename: DefaultDescriptionFilename,
		DirectiveTemplate:   DefaultDirectiveTemplate,
		NamingPrompt:        DefaultNamingPrompt,
		SummaryPrompt:       DefaultSummaryPrompt,
		MaxPromptTokens:     24000,
	}
}

// Load reads options from a YAML file layered over defaults. A missing file
// is not an error: defaults are returned unchanged, matching the behavior
// of a fresh install with no config written yet.
func Load(path string) (*Options, error) {
	opts := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, opts); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return opts, nil
}

// Validate checks that the options are internally consistent. A malformed
// directive template is a configuration error, not a runtime failure, so it
// is rejected here before any request is built from it.
func (o *Options) Validate() error {
	if o.ChatDirName == "" {
		return fmt.Errorf("chat_dir must not be empty")
	}
	if strings.ContainsAny(o.ChatDirName, "/\\") {
		return fmt.Errorf("chat_dir %q must be a single path segment", o.ChatDirName)
	}
	if o.SummaryFilename == "" || o.DescriptionFilename == "" {
		return fmt.Errorf("summary_filename and description_filename must not be empty")
	}
	if verbs, stringVerbs := templateVerbs(o.DirectiveTemplate); verbs != 2 || stringVerbs != 2 {
		return fmt.Errorf("directive_template must contain exactly two %%s slots and no other verbs, found %d verbs of which %d are %%s", verbs, stringVerbs)
	}
	if o.MaxPromptTokens < 0 {
		return fmt.Errorf("max_prompt_tokens must not be negative")
	}
	return nil
}

// templateVerbs counts the format verbs in a template, ignoring escaped %%.
// Any verb other than %s would leave formatting garbage in every composed
// directive, so Validate requires verbs == stringVerbs.
func templateVerbs(template string) (verbs, stringVerbs int) {
	cleaned := strings.ReplaceAll(template, "%%", "")
	return strings.Count(cleaned, "%"), strings.Count(cleaned, "%s")
}
