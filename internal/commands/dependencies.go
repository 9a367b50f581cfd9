package commands

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/diogo/helper/internal/api"
	"github.com/diogo/helper/internal/config"
	"github.com/diogo/helper/internal/history"
	"github.com/diogo/helper/internal/models"
	"github.com/diogo/helper/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Getenv reads the environment
	Getenv config.Getenv

	// NewCompleter builds the completion backend selected by the settings
	NewCompleter func(settings config.Settings, logger *zap.Logger) (api.Completer, error)

	// PickConversation runs the interactive selector; nil result means cancelled
	PickConversation func(h *history.History) (*history.Conversation, error)

	// CopyToClipboard copies the reply text
	CopyToClipboard func(text string) error

	// IsTTY reports whether stdout is a terminal
	IsTTY func() bool

	// TerminalWidth returns the stdout width in columns
	TerminalWidth func() int
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Stdin:            os.Stdin,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Getenv:           os.Getenv,
		NewCompleter:     newCompleter,
		PickConversation: tui.RunPicker,
		CopyToClipboard:  clipboard.WriteAll,
		IsTTY:            isStdoutTTY,
		TerminalWidth:    getTerminalWidth,
	}
}

// newCompleter builds the api.Completer for settings.Provider
func newCompleter(settings config.Settings, logger *zap.Logger) (api.Completer, error) {
	switch settings.Provider {
	case models.ProviderLangChain:
		return api.NewLangChainClient(settings.APIKey, settings.BaseURL, settings.Model, settings.Timeout, logger)
	default:
		return api.NewClient(settings.APIKey,
			api.WithBaseURL(settings.BaseURL),
			api.WithTimeout(settings.Timeout),
			api.WithLogger(logger),
		)
	}
}
