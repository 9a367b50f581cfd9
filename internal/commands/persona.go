package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/helper/internal/config"
	apierrors "github.com/diogo/helper/internal/errors"
)

func newPersonaCmd(a *app) *cobra.Command {
	personaCmd := &cobra.Command{
		Use:   "persona",
		Short: "List chat personas",
		Long: `Personas are named system prompts. They are read from personas.json in the
configuration directory, merged over the built-in ones, and selected with --persona.`,
	}

	personaCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available personas",
		Args:  cobra.NoArgs,
		RunE:  a.runPersonaList,
	})
	personaCmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show persona details",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runPersonaShow,
	})

	return personaCmd
}

func loadPersonas() (*config.PersonaConfig, error) {
	pc, err := config.LoadPersonas()
	if err != nil {
		return nil, apierrors.NewConfigErrorWithCause("personas file", err)
	}
	return pc, nil
}

func (a *app) runPersonaList(cmd *cobra.Command, args []string) error {
	pc, err := loadPersonas()
	if err != nil {
		return err
	}

	cfg, _ := config.LoadConfig()
	defaultName := pc.DefaultPersona
	if cfg.DefaultPersona != "" {
		defaultName = cfg.DefaultPersona
	}

	w := tabwriter.NewWriter(a.deps.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDESCRIPTION\tDEFAULT")
	_, _ = fmt.Fprintln(w, "----\t-----------\t-------")

	for _, p := range pc.Personas {
		isDefault := ""
		if p.Name == defaultName {
			isDefault = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Description, isDefault)
	}

	return w.Flush()
}

func (a *app) runPersonaShow(cmd *cobra.Command, args []string) error {
	persona, err := config.GetPersona(args[0])
	if err != nil {
		return apierrors.NewConfigErrorWithCause("persona", err)
	}

	out := a.deps.Stdout
	fmt.Fprintf(out, "Name: %s\n", persona.Name)
	fmt.Fprintf(out, "Description: %s\n", persona.Description)
	if persona.Model != "" {
		fmt.Fprintf(out, "Preferred Model: %s\n", persona.Model)
	}
	prompt := persona.SystemPrompt
	if prompt == "" {
		prompt = "(none)"
	}
	fmt.Fprintf(out, "\nSystem Prompt:\n%s\n", prompt)

	return nil
}
