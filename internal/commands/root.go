// Package commands provides CLI commands for helper.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/helper/internal/config"
	apierrors "github.com/diogo/helper/internal/errors"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// app carries the parsed flags and dependencies shared by all commands
type app struct {
	deps  *Dependencies
	flags config.Flags

	conversation int64
	version      bool
}

// NewRootCmd builds the command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps}

	cmd := &cobra.Command{
		Use:   "helper [message...]",
		Short: "Chat with an OpenAI-compatible model from the command line",
		Long: `helper sends one message to a chat model and prints the reply.
Conversations are kept in a local JSON history file, so every run continues
the current conversation unless --new or --conversation says otherwise.

Each message fragment and the system prompt may be literal text, the path of
a file to read, or "-" for standard input. Fragments are joined with newlines.

Examples:
  helper "What is a goroutine?"
  helper -n -s "You are terse." "Explain channels"
  helper -c 3 -m notes.md -m "Summarize the above"
  git diff | helper -i "Review this patch"
  helper history list`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runRoot,
	}

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return apierrors.NewConfigErrorWithCause("", err)
	})

	// Flags shared with subcommands
	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.flags.HistoryFile, "history", "H", "", "History file (default ~/.helper/history.json, env "+config.EnvHistoryFile+")")
	pf.StringVar(&a.flags.Model, "model", "", "Model to use (env "+config.EnvModel+")")
	pf.StringVar(&a.flags.BaseURL, "base-url", "", "API base URL (env "+config.EnvBaseURL+")")
	pf.StringVar(&a.flags.Provider, "provider", "", "Completion backend: http or langchain")
	pf.StringVarP(&a.flags.System, "system", "s", "", "System prompt for new conversations: text, file path or - (env "+config.EnvSystemMessage+")")
	pf.StringVarP(&a.flags.Persona, "persona", "p", "", "Use a persona's system prompt for new conversations")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "Log debug information to stderr")
	pf.DurationVar(&a.flags.Timeout, "timeout", 0, "Request timeout (default 5m)")

	f := cmd.Flags()
	f.Int64VarP(&a.conversation, "conversation", "c", 0, "Continue the conversation with this id")
	f.BoolVarP(&a.flags.New, "new", "n", false, "Start a new conversation")
	f.StringArrayVarP(&a.flags.Messages, "message", "m", nil, "Message fragment: text, file path or - (repeatable)")
	f.BoolVarP(&a.flags.Stdin, "stdin", "i", false, "Read a message fragment from standard input first")
	f.StringVarP(&a.flags.Output, "output", "o", "", "Write the reply to a file")
	f.BoolVar(&a.flags.Raw, "raw", false, "Print the reply without formatting")
	f.BoolVar(&a.version, "version", false, "Show version and exit")

	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newPersonaCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	if a.version {
		fmt.Fprintf(a.deps.Stdout, "helper %s (built %s)\n", Version, BuildTime)
		return nil
	}

	a.flags.Args = args
	if cmd.Flags().Changed("conversation") {
		id := a.conversation
		a.flags.Conversation = &id
	}

	return runChat(cmd.Context(), a.deps, a.flags)
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(nil)

// Execute runs the root command and exits with the status for its error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, errorContext(err)))
		os.Exit(apierrors.ExitCode(err))
	}
}

// errorContext names the failing stage for the error banner
func errorContext(err error) string {
	switch apierrors.KindOf(err) {
	case apierrors.KindConfig:
		if errors.Is(err, apierrors.ErrNoMessage) {
			return "Nothing to send (see helper --help)"
		}
		return "Invalid configuration"
	case apierrors.KindIO:
		return "History unavailable"
	case apierrors.KindLookup:
		return "Unknown conversation"
	case apierrors.KindConflict:
		return "History changed by another run"
	case apierrors.KindTransport:
		return "Request failed"
	default:
		return "Error"
	}
}
