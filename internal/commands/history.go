package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/helper/internal/config"
	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/history"
	"github.com/diogo/helper/internal/models"
)

type exportFlags struct {
	format   string
	output   string
	noSystem bool
}

func newHistoryCmd(a *app) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the conversation history",
		Long: `View the local conversation history and choose the current conversation.

` + history.ListAliases(),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all conversations",
		Args:  cobra.NoArgs,
		RunE:  a.runHistoryList,
	}

	showCmd := &cobra.Command{
		Use:   "show <ref>",
		Short: "Show a conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runHistoryShow,
	}

	var ef exportFlags
	exportCmd := &cobra.Command{
		Use:   "export <ref>",
		Short: "Export a conversation as markdown or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistoryExport(args[0], ef)
		},
	}
	exportCmd.Flags().StringVarP(&ef.format, "format", "f", string(history.ExportFormatMarkdown), "Export format: markdown or json")
	exportCmd.Flags().StringVarP(&ef.output, "output", "o", "", "Write to a file instead of stdout")
	exportCmd.Flags().BoolVar(&ef.noSystem, "no-system", false, "Leave out the system message")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search message contents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistorySearch(strings.Join(args, " "))
		},
	}

	useCmd := &cobra.Command{
		Use:   "use <ref>",
		Short: "Make a conversation current",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runHistoryUse,
	}

	pickCmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose the current conversation interactively",
		Args:  cobra.NoArgs,
		RunE:  a.runHistoryPick,
	}

	historyCmd.AddCommand(listCmd, showCmd, exportCmd, searchCmd, useCmd, pickCmd)
	return historyCmd
}

// historyStore opens the history file selected by flags, environment and config
func (a *app) historyStore() (*history.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, apierrors.NewConfigErrorWithCause("config file", err)
	}
	path, err := config.ResolveHistoryPath(a.flags.HistoryFile, a.deps.Getenv, cfg)
	if err != nil {
		return nil, err
	}
	return history.NewStore(path, history.WithLogger(newLogger(a.flags.Verbose || cfg.Verbose, a.deps.Stderr))), nil
}

// loadHistory loads the history, treating a missing file as empty
func (a *app) loadHistory() (*history.Store, *history.History, error) {
	store, err := a.historyStore()
	if err != nil {
		return nil, nil, err
	}
	h, err := store.LoadOrNew()
	if err != nil {
		return nil, nil, err
	}
	return store, h, nil
}

func (a *app) runHistoryList(cmd *cobra.Command, args []string) error {
	_, h, err := a.loadHistory()
	if err != nil {
		return err
	}

	convs := h.List()
	if len(convs) == 0 {
		fmt.Fprintln(a.deps.Stdout, "No conversations found.")
		return nil
	}

	w := tabwriter.NewWriter(a.deps.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, " \tID\tMESSAGES\tTITLE")
	_, _ = fmt.Fprintln(w, " \t--\t--------\t-----")

	for _, conv := range convs {
		marker := " "
		if conv.ID == h.CurrentConversationID {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", marker, conv.ID, len(conv.Messages), conv.Title())
	}

	return w.Flush()
}

func (a *app) runHistoryShow(cmd *cobra.Command, args []string) error {
	_, h, err := a.loadHistory()
	if err != nil {
		return err
	}

	conv, err := h.ResolveConversation(args[0])
	if err != nil {
		return err
	}

	out := a.deps.Stdout
	fmt.Fprintf(out, "ID: %d\n", conv.ID)
	fmt.Fprintf(out, "Title: %s\n", conv.Title())
	fmt.Fprintf(out, "Messages: %d\n", len(conv.Messages))
	if conv.ID == h.CurrentConversationID {
		fmt.Fprintln(out, "Current: yes")
	}
	fmt.Fprintln(out)

	for i, msg := range conv.Messages {
		fmt.Fprintf(out, "[%d] %s:\n", i+1, msg.Role)
		if msg.FunctionCall != nil {
			fmt.Fprintf(out, "  function call: %s(%s)\n", msg.FunctionCall.Name, msg.FunctionCall.Arguments)
		}
		if msg.Content != "" {
			fmt.Fprintf(out, "  %s\n", strings.ReplaceAll(msg.Content, "\n", "\n  "))
		}
		fmt.Fprintln(out)
	}

	return nil
}

func (a *app) runHistoryExport(ref string, ef exportFlags) error {
	format, err := history.ParseExportFormat(ef.format)
	if err != nil {
		return apierrors.NewConfigErrorWithCause("--format", err)
	}

	_, h, err := a.loadHistory()
	if err != nil {
		return err
	}

	conv, err := h.ResolveConversation(ref)
	if err != nil {
		return err
	}

	opts := history.ExportOptions{Format: format, IncludeSystem: !ef.noSystem}
	data, err := history.Export(conv, opts)
	if err != nil {
		return err
	}

	if ef.output == "" {
		_, err := a.deps.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(ef.output, data, 0o644); err != nil {
		return apierrors.NewIOError("write export", ef.output, err)
	}
	fmt.Fprintf(a.deps.Stderr, "Exported conversation %d to %s\n", conv.ID, ef.output)
	return nil
}

func (a *app) runHistorySearch(query string) error {
	_, h, err := a.loadHistory()
	if err != nil {
		return err
	}

	results := h.Search(query)
	if len(results) == 0 {
		fmt.Fprintf(a.deps.Stdout, "No conversations match %q.\n", query)
		return nil
	}

	w := tabwriter.NewWriter(a.deps.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tROLE\tMATCH")
	for _, r := range results {
		role := models.Role("")
		if r.MatchIndex < len(r.Conversation.Messages) {
			role = r.Conversation.Messages[r.MatchIndex].Role
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", r.Conversation.ID, role, r.MatchSnippet)
	}
	return w.Flush()
}

func (a *app) runHistoryUse(cmd *cobra.Command, args []string) error {
	store, h, err := a.loadHistory()
	if err != nil {
		return err
	}

	id, err := h.Resolve(args[0])
	if err != nil {
		return err
	}

	return a.selectAndSave(store, h, id)
}

func (a *app) runHistoryPick(cmd *cobra.Command, args []string) error {
	store, h, err := a.loadHistory()
	if err != nil {
		return err
	}
	if len(h.Conversations) == 0 {
		fmt.Fprintln(a.deps.Stdout, "No conversations found.")
		return nil
	}

	conv, err := a.deps.PickConversation(h)
	if err != nil {
		return err
	}
	if conv == nil {
		return nil
	}

	return a.selectAndSave(store, h, conv.ID)
}

func (a *app) selectAndSave(store *history.Store, h *history.History, id int64) error {
	conv, err := h.Select(id)
	if err != nil {
		return err
	}
	if err := store.Save(h); err != nil {
		return err
	}
	fmt.Fprintf(a.deps.Stdout, "Current conversation: %d (%s)\n", conv.ID, conv.Title())
	return nil
}
