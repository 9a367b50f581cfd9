package commands

import (
	"context"

	"github.com/diogo/helper/internal/chat"
	"github.com/diogo/helper/internal/config"
	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/input"
)

// loadSettings reads the config and persona files and resolves them with
// flags and environment
func loadSettings(deps *Dependencies, flags config.Flags) (config.Settings, error) {
	if err := flags.Validate(); err != nil {
		return config.Settings{}, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Settings{}, apierrors.NewConfigErrorWithCause("config file", err)
	}

	personas, err := config.LoadPersonas()
	if err != nil {
		return config.Settings{}, apierrors.NewConfigErrorWithCause("personas file", err)
	}

	return config.Resolve(flags, deps.Getenv, cfg, personas)
}

// runChat performs one exchange: resolve settings, send the message and
// print the reply
func runChat(ctx context.Context, deps *Dependencies, flags config.Flags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Usage errors are reported before the config files are read
	if err := flags.ValidateForSend(deps.Getenv); err != nil {
		return err
	}

	settings, err := loadSettings(deps, flags)
	if err != nil {
		return err
	}
	if err := settings.ValidateForSend(); err != nil {
		return err
	}

	logger := newLogger(settings.Verbose, deps.Stderr)
	defer func() { _ = logger.Sync() }()

	completer, err := deps.NewCompleter(settings, logger)
	if err != nil {
		return err
	}

	// Verbose logs share stderr with the spinner
	spinning := !settings.Raw && !settings.Verbose && deps.IsTTY()
	spin := newSpinner(deps.Stderr, "Waiting for "+settings.Model)

	session := chat.NewSession(settings, completer,
		chat.WithResolver(input.NewResolver(input.WithStdin(deps.Stdin))),
		chat.WithLogger(logger),
		chat.WithStageHook(func(stage chat.Stage) {
			if spinning && stage == chat.StageMessageAssembled {
				spin.start()
			}
		}),
	)

	res, err := session.Run(ctx)
	if err != nil {
		spin.stop()
		return err
	}

	return writeReply(deps, settings, res, spin)
}
