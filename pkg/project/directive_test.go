package project

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/recall/pkg/config"
)

const testTemplate = "Summary: %s | Description: %s"

func TestComposeMissingDocuments(t *testing.T) {
	store := newTestStore(t)
	composer := NewDirectiveComposer(store, testTemplate)

	assert.Equal(t, "Summary: None | Description: None", composer.Compose())
}

func TestComposeDeterministic(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteSummary("Goal: ship v1"))

	composer := NewDirectiveComposer(store, testTemplate)
	first := composer.Compose()
	second := composer.Compose()
	assert.Equal(t, first, second)
	assert.Equal(t, "Summary: Goal: ship v1 | Description: None", first)
}

func TestComposeReadsFreshState(t *testing.T) {
	store := newTestStore(t)
	composer := NewDirectiveComposer(store, testTemplate)

	before := composer.Compose()
	require.NoError(t, store.WriteSummary("updated after first compose"))
	after := composer.Compose()

	assert.NotEqual(t, before, after)
	assert.Contains(t, after, "updated after first compose")
}

func TestComposeIncludesBothDocuments(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteSummary("the summary"))
	require.NoError(t, os.WriteFile(store.DescriptionPath(), []byte("the description"), 0o600))

	composer := NewDirectiveComposer(store, testTemplate)
	assert.Equal(t, "Summary: the summary | Description: the description", composer.Compose())
}

func TestProjectDirectiveUsesConfiguredTemplate(t *testing.T) {
	opts := config.Default()
	opts.DirectiveTemplate = "S=%s D=%s"

	p, err := Open(t.TempDir(), opts)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("S=%s D=%s", MissingDocument, MissingDocument), p.Directive().Compose())
}

func TestOpenSameRootSharesInstance(t *testing.T) {
	root := t.TempDir()

	a, err := Open(root, nil)
	require.NoError(t, err)
	b, err := Open(root, nil)
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestOpenRejectsInvalidOptions(t *testing.T) {
	opts := config.Default()
	opts.DirectiveTemplate = "only one slot: %s"

	_, err := Open(t.TempDir(), opts)
	require.Error(t, err)
}

func TestOpenKeepsFirstOptions(t *testing.T) {
	root := t.TempDir()
	first := config.Default()
	first.ChatDirName = ".first-chats"
	a, err := Open(root, first)
	require.NoError(t, err)

	second := config.Default()
	second.ChatDirName = ".second-chats"
	b, err := Open(root, second)
	require.NoError(t, err)

	// The options a project was first opened with stay in effect.
	assert.Same(t, a, b)
	assert.Equal(t, ".first-chats", b.Options().ChatDirName)

	// Invalid options are rejected even for an already-open root.
	bad := config.Default()
	bad.DirectiveTemplate = "%s"
	_, err = Open(root, bad)
	require.Error(t, err)
}
