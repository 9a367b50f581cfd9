package config

import (
	"fmt"
	"time"

	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/models"
)

// Environment variables consulted by Resolve
const (
	EnvHistoryFile   = "HELPER_HISTORY_FILE"
	EnvSystemMessage = "HELPER_SYSTEM_MESSAGE"
	EnvModel         = "HELPER_MODEL"
	EnvAPIKey        = "OPENAI_API_KEY"
	EnvBaseURL       = "OPENAI_BASE_URL"
)

// StdinMarker names standard input wherever a text argument is accepted
const StdinMarker = "-"

// Flags holds the raw command-line values. Empty strings and zero values mean
// "not given".
type Flags struct {
	System       string
	Persona      string
	Conversation *int64
	New          bool
	HistoryFile  string
	Messages     []string
	Args         []string
	Stdin        bool
	Model        string
	BaseURL      string
	Provider     string
	Output       string
	Raw          bool
	Verbose      bool
	Timeout      time.Duration
}

// Validate reports flag combinations that are invalid regardless of any
// other configuration source. It performs no I/O.
func (f Flags) Validate() error {
	if f.New && f.Conversation != nil {
		return apierrors.NewConfigErrorWithCause("", apierrors.ErrConflictingFlags)
	}
	return nil
}

// ValidateForSend extends Validate with the checks a run that calls the
// remote model needs before any file is read: at least one message fragment
// and an API key in the environment.
func (f Flags) ValidateForSend(getenv Getenv) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if len(f.Fragments()) == 0 {
		return apierrors.NewConfigErrorWithCause("", apierrors.ErrNoMessage)
	}
	if getenv(EnvAPIKey) == "" {
		return apierrors.NewConfigErrorWithCause(EnvAPIKey, apierrors.ErrMissingAPIKey)
	}
	return nil
}

// Fragments returns the message fragments in the order they are assembled:
// stdin (when --stdin is set), then --message values, then positional args.
func (f Flags) Fragments() []string {
	var fragments []string
	if f.Stdin {
		fragments = append(fragments, StdinMarker)
	}
	fragments = append(fragments, f.Messages...)
	fragments = append(fragments, f.Args...)
	return fragments
}

// Getenv looks up an environment variable; os.Getenv satisfies it
type Getenv func(key string) string

// Settings is the effective configuration of one run
type Settings struct {
	HistoryPath string
	// SystemPrompt is the unresolved system prompt source: literal text, a
	// file path or the stdin marker. Empty means no system message.
	SystemPrompt    string
	Persona         string
	ConversationID  *int64
	New             bool
	Fragments       []string
	Model           string
	BaseURL         string
	Provider        string
	APIKey          string
	Timeout         time.Duration
	OutputPath      string
	Raw             bool
	Verbose         bool
	CopyToClipboard bool
	Markdown        MarkdownConfig
}

// Resolve merges flags, environment and config file into Settings.
// Precedence is flags > environment > config file > built-in defaults.
// personas may be nil, in which case the built-in personas are used.
func Resolve(flags Flags, getenv Getenv, cfg Config, personas *PersonaConfig) (Settings, error) {
	if err := flags.Validate(); err != nil {
		return Settings{}, err
	}
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	if personas == nil {
		personas = &PersonaConfig{Personas: DefaultPersonas(), DefaultPersona: "default"}
	}

	s := Settings{
		Persona:         flags.Persona,
		ConversationID:  flags.Conversation,
		New:             flags.New,
		Fragments:       flags.Fragments(),
		APIKey:          getenv(EnvAPIKey),
		OutputPath:      flags.Output,
		Raw:             flags.Raw,
		Verbose:         flags.Verbose || cfg.Verbose,
		CopyToClipboard: cfg.CopyToClipboard,
		Markdown:        cfg.Markdown,
	}

	historyPath, err := ResolveHistoryPath(flags.HistoryFile, getenv, cfg)
	if err != nil {
		return Settings{}, err
	}
	s.HistoryPath = historyPath

	s.Model = firstNonEmpty(flags.Model, getenv(EnvModel), cfg.DefaultModel, models.DefaultModel)
	s.BaseURL = firstNonEmpty(flags.BaseURL, getenv(EnvBaseURL), cfg.BaseURL, models.DefaultBaseURL)

	s.Provider = firstNonEmpty(flags.Provider, cfg.Provider, models.ProviderHTTP)
	if !validProvider(s.Provider) {
		return Settings{}, apierrors.NewConfigError(fmt.Sprintf("unknown provider %q (want one of %v)", s.Provider, models.AllProviders()))
	}

	switch {
	case flags.Timeout > 0:
		s.Timeout = flags.Timeout
	case cfg.TimeoutSeconds > 0:
		s.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	default:
		s.Timeout = DefaultTimeoutSeconds * time.Second
	}

	prompt, err := resolveSystemPrompt(flags, getenv, cfg, personas)
	if err != nil {
		return Settings{}, err
	}
	s.SystemPrompt = prompt

	return s, nil
}

// ResolveHistoryPath picks the history file: flag > HELPER_HISTORY_FILE >
// config history_file > ~/.helper/history.json
func ResolveHistoryPath(flag string, getenv Getenv, cfg Config) (string, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	defaultHistory, err := DefaultHistoryPath()
	if err != nil {
		return "", apierrors.NewConfigErrorWithCause("history path", err)
	}
	return ExpandHome(firstNonEmpty(flag, getenv(EnvHistoryFile), cfg.HistoryFile, defaultHistory)), nil
}

// ValidateForSend checks the requirements of a run that calls the remote model
func (s Settings) ValidateForSend() error {
	if len(s.Fragments) == 0 {
		return apierrors.NewConfigErrorWithCause("", apierrors.ErrNoMessage)
	}
	if s.APIKey == "" {
		return apierrors.NewConfigErrorWithCause(EnvAPIKey, apierrors.ErrMissingAPIKey)
	}
	return nil
}

// MaskedAPIKey returns the API key with all but the last four characters hidden
func (s Settings) MaskedAPIKey() string {
	if s.APIKey == "" {
		return "(not set)"
	}
	if len(s.APIKey) <= 4 {
		return "****"
	}
	return "****" + s.APIKey[len(s.APIKey)-4:]
}

// resolveSystemPrompt picks the system prompt source:
// --system > --persona > environment > config system_prompt > config default persona.
func resolveSystemPrompt(flags Flags, getenv Getenv, cfg Config, personas *PersonaConfig) (string, error) {
	if flags.System != "" {
		return flags.System, nil
	}
	if flags.Persona != "" {
		p, err := personas.Find(flags.Persona)
		if err != nil {
			return "", apierrors.NewConfigErrorWithCause("persona", err)
		}
		return p.SystemPrompt, nil
	}
	if env := getenv(EnvSystemMessage); env != "" {
		return env, nil
	}
	if cfg.SystemPrompt != "" {
		return cfg.SystemPrompt, nil
	}

	name := firstNonEmpty(cfg.DefaultPersona, personas.DefaultPersona)
	if name == "" {
		return "", nil
	}
	p, err := personas.Find(name)
	if err != nil {
		return "", apierrors.NewConfigErrorWithCause("default persona", err)
	}
	return p.SystemPrompt, nil
}

func validProvider(name string) bool {
	for _, p := range models.AllProviders() {
		if p == name {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
