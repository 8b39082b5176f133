package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/entrhq/recall/pkg/chat"
	"github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/llm/openai"
	"github.com/entrhq/recall/pkg/pipeline"
	"github.com/entrhq/recall/pkg/project"
)

// openProject resolves the target project from the global flags. When no
// config path is given, <root>/.recall.yaml is consulted and silently
// skipped if absent.
func openProject() (*project.Project, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(projectRoot, ".recall.yaml")
	}
	opts, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return project.Open(projectRoot, opts)
}

func newDirectiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "directive",
		Short: "Print the system directive composed from the project documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return fail(err)
			}
			fmt.Println(p.Directive().Compose())
			return nil
		},
	}
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the project's running summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return fail(err)
			}
			fmt.Println(p.Store().ReadSummary())
			return nil
		},
	}
}

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List the chat sessions stored in this project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return fail(err)
			}
			names, err := chat.NewSessionManager(p).Sessions()
			if err != nil {
				return fail(err)
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newTurnCmd() *cobra.Command {
	var (
		session string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "turn",
		Short: "Run the post-turn pipeline over transcript content read from stdin",
		Long: "Reads a completed conversation turn from stdin, appends it to the named\n" +
			"session (creating it if needed), and runs the naming and summary pipeline\n" +
			"exactly as the in-editor hook would after an assistant turn.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return fail(err)
			}

			content, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fail(fmt.Errorf("read stdin: %w", err))
			}

			sess, err := chat.NewSessionManager(p).OpenOrCreate(session, "", chat.Format(format))
			if err != nil {
				return fail(err)
			}
			sess.Transcript.Append(string(content))

			provider, err := openai.NewProvider("")
			if err != nil {
				return fail(err)
			}

			hook, err := pipeline.NewHook(p, provider)
			if err != nil {
				return fail(err)
			}
			hook.TurnCompleted(context.Background(), sess.Transcript)
			hook.Wait()

			if path := sess.Transcript.Path(); path != "" {
				fmt.Println(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "session name to open or create")
	cmd.Flags().StringVarP(&format, "format", "f", string(chat.FormatMarkdown), "transcript format for new sessions (markdown or org)")
	return cmd
}
