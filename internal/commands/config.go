package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/helper/internal/config"
	apierrors "github.com/diogo/helper/internal/errors"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the settings a chat run would use after merging flags, environment,
the config file and built-in defaults. The API key is masked.`,
		Args: cobra.NoArgs,
		RunE: a.runConfig,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE:  a.runConfigInit,
	})

	return configCmd
}

func (a *app) runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return apierrors.NewConfigErrorWithCause("config path", err)
	}
	if _, err := os.Stat(path); err == nil {
		return apierrors.NewConfigError(fmt.Sprintf("config file already exists: %s", path))
	}

	if err := config.SaveConfig(config.DefaultConfig()); err != nil {
		return apierrors.NewIOError("write config", path, err)
	}
	fmt.Fprintf(a.deps.Stdout, "Wrote %s\n", path)
	return nil
}

func (a *app) runConfig(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(a.deps, a.flags)
	if err != nil {
		return err
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		configPath = "(unavailable)"
	}

	header := lipgloss.NewStyle().Foreground(colorTextDim)
	fmt.Fprintln(a.deps.Stdout, header.Render("Config file: "+configPath))

	systemPrompt := settings.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = "(none)"
	}
	persona := settings.Persona
	if persona == "" {
		persona = "(none)"
	}

	w := tabwriter.NewWriter(a.deps.Stdout, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"history_file", settings.HistoryPath},
		{"model", settings.Model},
		{"base_url", settings.BaseURL},
		{"provider", settings.Provider},
		{"api_key", settings.MaskedAPIKey()},
		{"timeout", settings.Timeout.String()},
		{"persona", persona},
		{"system_prompt", systemPrompt},
		{"verbose", fmt.Sprint(settings.Verbose)},
		{"copy_to_clipboard", fmt.Sprint(settings.CopyToClipboard)},
		{"markdown.style", settings.Markdown.Style},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	return w.Flush()
}
